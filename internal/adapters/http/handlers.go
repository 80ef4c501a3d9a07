package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"fitinsight/internal/adapters/http/middleware"
	"fitinsight/internal/adapters/spreadsheet"
	accountStore "fitinsight/internal/adapters/storage/account"
	"fitinsight/internal/application/orchestrators"
	"fitinsight/internal/application/projections"
	"fitinsight/internal/domain/account"
	"fitinsight/internal/domain/dataset"
	"fitinsight/internal/domain/schema"
)

// HelpDocPath points at the upload-format guide rendered by /help.
var HelpDocPath = "docs/UPLOAD_FORMAT.md"

// maxUploadBytes caps the size of one spreadsheet upload.
const maxUploadBytes = 16 << 20 // 16 MB

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.Handle("/api/password", middleware.RequireAuth(http.HandlerFunc(handleChangePassword)))
	mux.Handle("/api/upload", middleware.RequireAuth(http.HandlerFunc(handleUpload)))
	mux.Handle("/api/kpis", middleware.RequireAuth(http.HandlerFunc(handleKPIs)))
	mux.Handle("/api/attendance", middleware.RequireAuth(http.HandlerFunc(handleAttendance)))
	mux.Handle("/api/risk", middleware.RequireAuth(http.HandlerFunc(handleRisk)))
	mux.Handle("/api/raw", middleware.RequireAuth(http.HandlerFunc(handleRaw)))
	mux.Handle("/api/export", middleware.RequireAuth(http.HandlerFunc(handleExport)))
	mux.Handle("POST /api/members/{id}/reminder", middleware.RequireAuth(http.HandlerFunc(handleReminder)))

	adminOnly := middleware.RequireRole(account.RoleAdmin)
	mux.Handle("GET /api/accounts", adminOnly(http.HandlerFunc(handleListAccounts)))
	mux.Handle("POST /api/accounts", adminOnly(http.HandlerFunc(handleCreateAccount)))
	mux.Handle("DELETE /api/accounts/{id}", adminOnly(http.HandlerFunc(handleDeleteAccount)))

	mux.HandleFunc("/help", handleHelp)
}

// generateID creates a unique ID for new entities.
func generateID() string {
	return uuid.New().String()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// sessionContext translates the HTTP session into the explicit context the
// application layer takes. The second return is false for anonymous requests.
func sessionContext(r *http.Request) (orchestrators.SessionContext, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return orchestrators.SessionContext{}, false
	}
	return orchestrators.SessionContext{
		Token:      sess.Token,
		Email:      sess.Email,
		Authorized: true,
	}, true
}

// handleLogin handles POST /api/login.
// Accepts JSON {email, password}; on success sets the session cookie.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    strings.TrimSpace(body.Email),
		Password: body.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			status = http.StatusForbidden
		}
		respondError(w, status, err.Error())
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		slog.Error("session_create_failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	middleware.SetSessionCookie(w, token)

	respondJSON(w, http.StatusOK, map[string]any{
		"email":                    result.Email,
		"role":                     result.Role,
		"password_change_required": result.PasswordChangeRequired,
	})
}

// handleLogout handles POST /api/logout.
// Drops the session and its uploaded dataset.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		stores.DatasetStore.Delete(sess.Token)
		sessions.Delete(sess.Token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleChangePassword handles POST /api/password.
// Accepts JSON {current_password, new_password} for the logged-in account.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload handles POST /api/upload.
// Accepts one multipart file field ("file"): an .xlsx workbook with members,
// attendance and payments sheets, or a .csv standing in for the members
// table. Schema failures on the members table come back as a 422 naming the
// missing field and the headers that were found.
func handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, _ := sessionContext(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "request too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	input := orchestrators.IngestDatasetInput{Session: session}
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".xlsx":
		sheets, err := spreadsheet.DecodeWorkbook(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "could not read workbook: "+err.Error())
			return
		}
		input.Members = sheets.Members
		input.Attendance = sheets.Attendance
		input.Payments = sheets.Payments
	case ".csv":
		table, err := spreadsheet.DecodeCSV(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "could not read csv: "+err.Error())
			return
		}
		input.Members = table
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q (use .xlsx or .csv)", ext))
		return
	}

	result, err := orchestrators.ExecuteIngestDataset(r.Context(), input, orchestrators.IngestDatasetDeps{
		DatasetStore: stores.DatasetStore,
		Policy:       riskPolicy,
		GenerateID:   generateID,
		Now:          time.Now,
	})
	if err != nil {
		var missing *schema.MissingColumnError
		switch {
		case errors.As(err, &missing):
			respondError(w, http.StatusUnprocessableEntity, missing.Error())
		case errors.Is(err, orchestrators.ErrNotAuthorized):
			respondError(w, http.StatusUnauthorized, "not authenticated")
		default:
			slog.Error("upload_failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"dataset_id": result.DatasetID,
		"members":    result.Members,
		"payments":   result.Payments,
		"coercions": map[string]int{
			"defaulted_statuses": result.Coercions.DefaultedStatuses,
			"defaulted_amounts":  result.Coercions.DefaultedAmounts,
			"unknown_dates":      result.Coercions.UnknownDates,
			"dropped_rows":       result.Coercions.DroppedRows,
		},
	})
}

// sessionDataset resolves the caller's session and uploaded dataset, writing
// the error response itself when either is missing.
func sessionDataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	ds, ok := stores.DatasetStore.Get(sess.Token)
	if !ok {
		respondError(w, http.StatusNotFound, "no dataset uploaded yet")
		return nil, false
	}
	return ds, true
}

// handleKPIs handles GET /api/kpis.
func handleKPIs(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ds, ok := sessionDataset(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, projections.QueryGetKPIs(ds))
}

// handleAttendance handles GET /api/attendance.
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ds, ok := sessionDataset(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, projections.QueryGetAttendance(ds))
}

// memberRow is the JSON shape of one canonical member.
type memberRow struct {
	MemberID           string `json:"member_id"`
	Status             string `json:"status"`
	PlanType           string `json:"plan_type"`
	TrainerName        string `json:"trainer_name"`
	VisitCount         int    `json:"visit_count"`
	DaysSinceLastVisit int    `json:"days_since_last_visit"`
	RiskLevel          string `json:"risk_level"`
}

// handleRisk handles GET /api/risk?level=high|medium|low.
func handleRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	level, ok := projections.RiskLevelFromFilter(r.URL.Query().Get("level"))
	if !ok {
		respondError(w, http.StatusBadRequest, "level must be high, medium or low")
		return
	}
	ds, ok := sessionDataset(w, r)
	if !ok {
		return
	}

	members := projections.QueryGetRiskMembers(ds, level)
	rows := make([]memberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, memberRow{
			MemberID:           m.MemberID,
			Status:             m.Status,
			PlanType:           m.PlanType,
			TrainerName:        m.TrainerName,
			VisitCount:         m.VisitCount,
			DaysSinceLastVisit: m.DaysSinceLastVisit,
			RiskLevel:          m.RiskLevel,
		})
	}
	respondJSON(w, http.StatusOK, rows)
}

// handleRaw handles GET /api/raw?table=members|attendance|payments.
// Serves the uploaded table exactly as decoded, before any normalization.
func handleRaw(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ds, ok := sessionDataset(w, r)
	if !ok {
		return
	}

	var table dataset.Table
	switch r.URL.Query().Get("table") {
	case "members", "":
		table = ds.Raw.Members
	case "attendance":
		table = ds.Raw.Attendance
	case "payments":
		table = ds.Raw.Payments
	default:
		respondError(w, http.StatusBadRequest, "table must be members, attendance or payments")
		return
	}

	headers := table.Headers
	if headers == nil {
		headers = []string{}
	}
	rows := table.Rows
	if rows == nil {
		rows = []dataset.Row{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"headers": headers,
		"rows":    rows,
	})
}

// handleExport handles GET /api/export?level=high|medium|low.
// Streams the canonical member set as a CSV attachment.
func handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, _ := sessionContext(r)
	level, ok := projections.RiskLevelFromFilter(r.URL.Query().Get("level"))
	if !ok {
		respondError(w, http.StatusBadRequest, "level must be high, medium or low")
		return
	}

	// Buffer the export so store errors surface before any headers go out.
	var buf bytes.Buffer
	_, err := orchestrators.ExecuteExportMembers(r.Context(), orchestrators.ExportMembersInput{
		Session:   session,
		RiskLevel: level,
	}, orchestrators.ExportMembersDeps{DatasetStore: stores.DatasetStore}, &buf)
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrNoDataset):
			respondError(w, http.StatusNotFound, "no dataset uploaded yet")
		case errors.Is(err, orchestrators.ErrNotAuthorized):
			respondError(w, http.StatusUnauthorized, "not authenticated")
		default:
			slog.Error("export_failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "export failed")
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="members_export.csv"`)
	w.Write(buf.Bytes())
}

// handleReminder handles POST /api/members/{id}/reminder.
func handleReminder(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionContext(r)

	err := orchestrators.ExecuteSendReminder(r.Context(), orchestrators.SendReminderInput{
		Session:  session,
		MemberID: r.PathValue("id"),
	}, orchestrators.SendReminderDeps{
		DatasetStore: stores.DatasetStore,
		Sender:       emailSender,
		From:         emailFromAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrNoDataset):
			respondError(w, http.StatusNotFound, "no dataset uploaded yet")
		case errors.Is(err, orchestrators.ErrMemberNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, orchestrators.ErrNotAuthorized):
			respondError(w, http.StatusUnauthorized, "not authenticated")
		default:
			slog.Error("reminder_failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "reminder failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

// accountRow is the JSON shape of one account.
type accountRow struct {
	ID                     string `json:"id"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	PasswordChangeRequired bool   `json:"password_change_required"`
}

// handleListAccounts handles GET /api/accounts. Admin only.
func handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := stores.AccountStore.List(r.Context(), accountStore.ListFilter{Limit: 200})
	if err != nil {
		slog.Error("account_list_failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "could not list accounts")
		return
	}

	rows := make([]accountRow, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, accountRow{
			ID:                     a.ID,
			Email:                  a.Email,
			Role:                   a.Role,
			PasswordChangeRequired: a.PasswordChangeRequired,
		})
	}
	respondJSON(w, http.StatusOK, rows)
}

// handleCreateAccount handles POST /api/accounts. Admin only.
// Accepts JSON {email, password, role}; role defaults to operator. The new
// account must change its password on first login.
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    strings.TrimSpace(body.Email),
		Password: body.Password,
		Role:     body.Role,
	}, orchestrators.ManageAccountDeps{AccountStore: stores.AccountStore, GenerateID: generateID})
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailTaken) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, accountRow{
		ID:                     acct.ID,
		Email:                  acct.Email,
		Role:                   acct.Role,
		PasswordChangeRequired: acct.PasswordChangeRequired,
	})
}

// handleDeleteAccount handles DELETE /api/accounts/{id}. Admin only.
func handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	err := orchestrators.ExecuteDeleteAccount(r.Context(), orchestrators.ManageAccountDeps{
		AccountStore: stores.AccountStore,
	}, r.PathValue("id"), sess.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrSelfDeletion):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, orchestrators.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("account_delete_failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "could not delete account")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHelp handles GET /help.
// Renders the upload-format guide from markdown.
func handleHelp(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	src, err := os.ReadFile(HelpDocPath)
	if err != nil {
		slog.Error("help_doc_unreadable", "path", HelpDocPath, "error", err.Error())
		http.Error(w, "help unavailable", http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	if err := goldmark.Convert(src, &body); err != nil {
		slog.Error("help_doc_render_failed", "error", err.Error())
		http.Error(w, "help unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>Upload format</title></head><body>%s</body></html>", body.String())
}
