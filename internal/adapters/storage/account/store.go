package account

import (
	"context"

	domain "fitinsight/internal/domain/account"
)

// ListFilter narrows List results.
type ListFilter struct {
	Role   string
	Limit  int
	Offset int
}

// Store defines persistence operations for accounts.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, entity domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}
