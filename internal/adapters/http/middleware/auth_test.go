package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fitinsight/internal/adapters/http/middleware"
	"fitinsight/internal/domain/account"
)

// TestSessionStoreRoundTrip tests create, lookup and delete.
func TestSessionStoreRoundTrip(t *testing.T) {
	store := middleware.NewSessionStore()

	token, err := store.Create("acc-1", "ops@example.com", account.RoleOperator)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if token == "" {
		t.Fatal("Create() returned empty token")
	}

	sess, ok := store.Get(token)
	if !ok {
		t.Fatal("Get() did not find session")
	}
	if sess.Token != token || sess.Email != "ops@example.com" || sess.Role != account.RoleOperator {
		t.Errorf("session = %+v", sess)
	}

	if _, ok := store.Get("bogus"); ok {
		t.Error("Get() found session for unknown token")
	}

	store.Delete(token)
	if _, ok := store.Get(token); ok {
		t.Error("Get() found session after Delete")
	}
}

// TestRequireAuth tests that unauthenticated requests get a 401 and
// authenticated ones pass through.
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	sess := middleware.Session{Token: "tok", AccountID: "acc-1", Email: "a@example.com", Role: account.RoleOperator}
	req = httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rec.Code)
	}
}

// TestRequireRole tests role gating.
func TestRequireRole(t *testing.T) {
	handler := middleware.RequireRole(account.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin allowed", account.RoleAdmin, http.StatusOK},
		{"operator forbidden", account.RoleOperator, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := middleware.Session{Token: "tok", AccountID: "acc-1", Email: "a@example.com", Role: tt.role}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(middleware.ContextWithSession(req.Context(), sess))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestAuthMiddlewareCookie tests that the Auth middleware resolves the
// session cookie into request context without blocking anonymous requests.
func TestAuthMiddlewareCookie(t *testing.T) {
	store := middleware.NewSessionStore()
	token, err := store.Create("acc-1", "ops@example.com", account.RoleOperator)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var got middleware.Session
	var found bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = middleware.GetSessionFromContext(r.Context())
	})
	handler := middleware.Auth(store)(inner)

	// With a valid cookie the session lands in context.
	rec := httptest.NewRecorder()
	middleware.SetSessionCookie(rec, token)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !found || got.AccountID != "acc-1" {
		t.Errorf("session from context = %+v, found %v", got, found)
	}

	// Without a cookie the request still reaches the handler, anonymous.
	found = false
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if found {
		t.Error("anonymous request unexpectedly carried a session")
	}
}
