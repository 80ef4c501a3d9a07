package orchestrators_test

import (
	"context"
	"errors"
	"testing"

	"fitinsight/internal/application/orchestrators"
	"fitinsight/internal/domain/account"
)

func (s *fakeAccountStore) Count(ctx context.Context) (int, error) {
	return len(s.accounts), nil
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id string) (account.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, errors.New("account not found")
}

func (s *fakeAccountStore) Delete(ctx context.Context, id string) error {
	for email, a := range s.accounts {
		if a.ID == id {
			delete(s.accounts, email)
			return nil
		}
	}
	return errors.New("account not found")
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "acc-" + string(rune('0'+n))
	}
}

// TestExecuteSeedAdmin tests that first startup seeds one admin flagged for
// a password change.
func TestExecuteSeedAdmin(t *testing.T) {
	store := newFakeAccountStore()
	deps := orchestrators.CreateAccountDeps{AccountStore: store, GenerateID: seqIDs()}

	if err := orchestrators.ExecuteSeedAdmin(context.Background(), deps, "admin@example.com", "change-me-on-first-login"); err != nil {
		t.Fatalf("ExecuteSeedAdmin() error = %v", err)
	}

	acct, ok := store.accounts["admin@example.com"]
	if !ok {
		t.Fatal("admin account was not saved")
	}
	if acct.Role != account.RoleAdmin {
		t.Errorf("role = %q, want admin", acct.Role)
	}
	if !acct.PasswordChangeRequired {
		t.Error("seeded admin not flagged for a password change")
	}
}

// TestExecuteSeedAdminIdempotent tests that a populated store is untouched.
func TestExecuteSeedAdminIdempotent(t *testing.T) {
	store := newFakeAccountStore(testAccount(t, "correct-horse-battery"))
	deps := orchestrators.CreateAccountDeps{AccountStore: store, GenerateID: seqIDs()}

	if err := orchestrators.ExecuteSeedAdmin(context.Background(), deps, "second@example.com", "change-me-on-first-login"); err != nil {
		t.Fatalf("ExecuteSeedAdmin() error = %v", err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("accounts = %d, want 1", len(store.accounts))
	}
	if _, ok := store.accounts["second@example.com"]; ok {
		t.Error("seed ran against a populated store")
	}
}

// TestExecuteCreateAccount tests operator creation with the forced
// password-change flag.
func TestExecuteCreateAccount(t *testing.T) {
	store := newFakeAccountStore()
	deps := orchestrators.ManageAccountDeps{AccountStore: store, GenerateID: seqIDs()}

	acct, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    "front-desk@example.com",
		Password: "temporary-password",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteCreateAccount() error = %v", err)
	}
	if acct.Role != account.RoleOperator {
		t.Errorf("role = %q, want operator default", acct.Role)
	}
	if !acct.PasswordChangeRequired {
		t.Error("new account not flagged for a password change")
	}
	if _, ok := store.accounts["front-desk@example.com"]; !ok {
		t.Error("account was not saved")
	}

	_, err = orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    "front-desk@example.com",
		Password: "another-password",
	}, deps)
	if !errors.Is(err, orchestrators.ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}
}

// TestExecuteCreateAccountRejectsWeakInput tests that domain rules still
// apply to admin-created accounts.
func TestExecuteCreateAccountRejectsWeakInput(t *testing.T) {
	store := newFakeAccountStore()
	deps := orchestrators.ManageAccountDeps{AccountStore: store, GenerateID: seqIDs()}

	if _, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    "front-desk@example.com",
		Password: "short",
	}, deps); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Errorf("short password error = %v, want ErrPasswordTooShort", err)
	}

	if _, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    "front-desk@example.com",
		Password: "temporary-password",
		Role:     "superuser",
	}, deps); err == nil {
		t.Error("invalid role accepted")
	}
}

// TestExecuteDeleteAccount tests deletion, the self-deletion guard and the
// unknown-id case.
func TestExecuteDeleteAccount(t *testing.T) {
	acct := testAccount(t, "correct-horse-battery")
	other := account.Account{ID: "acc-2", Email: "other@example.com", Role: account.RoleOperator}
	store := newFakeAccountStore(acct, other)
	deps := orchestrators.ManageAccountDeps{AccountStore: store}

	if err := orchestrators.ExecuteDeleteAccount(context.Background(), deps, "acc-2", acct.ID); err != nil {
		t.Fatalf("ExecuteDeleteAccount() error = %v", err)
	}
	if _, ok := store.accounts["other@example.com"]; ok {
		t.Error("account survived deletion")
	}

	if err := orchestrators.ExecuteDeleteAccount(context.Background(), deps, acct.ID, acct.ID); !errors.Is(err, orchestrators.ErrSelfDeletion) {
		t.Errorf("self-delete error = %v, want ErrSelfDeletion", err)
	}

	if err := orchestrators.ExecuteDeleteAccount(context.Background(), deps, "no-such-id", acct.ID); !errors.Is(err, orchestrators.ErrAccountNotFound) {
		t.Errorf("unknown id error = %v, want ErrAccountNotFound", err)
	}
}
