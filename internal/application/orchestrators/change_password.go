package orchestrators

import (
	"context"
	"log/slog"

	"fitinsight/internal/domain/account"
)

// AccountStoreForPasswordChange defines the store interface needed by
// password changes.
type AccountStoreForPasswordChange interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordInput carries input for the password change orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForPasswordChange
}

// ExecuteChangePassword verifies the current password and replaces it.
// PRE: AccountID identifies an existing account
// POST: On success the new hash is stored and any forced-change flag cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		slog.Info("auth_event", "event", "password_change_failed", "account", input.AccountID, "reason", "wrong_password")
		return ErrInvalidCredentials
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	acct.PasswordChangeRequired = false
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account", input.AccountID)
	return nil
}
