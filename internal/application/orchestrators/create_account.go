package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fitinsight/internal/domain/account"
)

// AccountStoreForSeed defines the store interface needed by seeding.
type AccountStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, a account.Account) error
}

// CreateAccountDeps holds dependencies for account creation.
type CreateAccountDeps struct {
	AccountStore AccountStoreForSeed
	GenerateID   func() string
}

// ExecuteSeedAdmin creates the initial admin account when the store is
// empty. Idempotent: a populated store is left untouched.
// PRE: email and password satisfy the account domain rules
// POST: Exactly one admin exists after first startup, flagged for a
// password change because the seed credentials come from the environment
// (or its well-known default).
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	acct := account.Account{
		ID:                     deps.GenerateID(),
		Email:                  email,
		Role:                   account.RoleAdmin,
		CreatedAt:              time.Now(),
		PasswordChangeRequired: true,
	}
	if err := acct.SetPassword(password); err != nil {
		return fmt.Errorf("set admin password: %w", err)
	}
	if err := acct.Validate(); err != nil {
		return fmt.Errorf("validate admin account: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("save admin account: %w", err)
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

// AccountStoreForManage defines the store interface needed by account
// management.
type AccountStoreForManage interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id string) error
}

// ManageAccountDeps holds dependencies for account management.
type ManageAccountDeps struct {
	AccountStore AccountStoreForManage
	GenerateID   func() string
}

// CreateAccountInput carries the fields for a new account. An empty Role
// defaults to operator.
type CreateAccountInput struct {
	Email    string
	Password string
	Role     string
}

var (
	// ErrEmailTaken indicates the email already belongs to an account.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrSelfDeletion indicates an account tried to delete itself.
	ErrSelfDeletion = errors.New("cannot delete the signed-in account")
	// ErrAccountNotFound indicates the account id matched nothing.
	ErrAccountNotFound = errors.New("account not found")
)

// ExecuteCreateAccount creates an account with the given credentials. The
// issuing admin hands the password over out of band, so the account is
// flagged for a password change on first login.
// PRE: input.Email is unused, input.Password satisfies the domain rules
// POST: Account exists with PasswordChangeRequired set
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps ManageAccountDeps) (account.Account, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return account.Account{}, ErrEmailTaken
	}

	role := input.Role
	if role == "" {
		role = account.RoleOperator
	}

	acct := account.Account{
		ID:                     deps.GenerateID(),
		Email:                  input.Email,
		Role:                   role,
		CreatedAt:              time.Now(),
		PasswordChangeRequired: true,
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, fmt.Errorf("save account: %w", err)
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct, nil
}

// ExecuteDeleteAccount removes an account. Deleting the account behind the
// current session is refused so an admin cannot strand themselves.
// PRE: actorID is the account id of the current session
// POST: Account with accountID no longer exists
func ExecuteDeleteAccount(ctx context.Context, deps ManageAccountDeps, accountID, actorID string) error {
	if accountID == actorID {
		return ErrSelfDeletion
	}
	if _, err := deps.AccountStore.GetByID(ctx, accountID); err != nil {
		return ErrAccountNotFound
	}
	if err := deps.AccountStore.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	slog.Info("auth_event", "event", "account_deleted", "account_id", accountID)
	return nil
}
