// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/civitrack/civitrack/internal/model"
)

// AccountRepository provides keyed access to registered accounts.
type AccountRepository interface {
	// Create inserts a new account and returns the assigned identifier.
	Create(ctx context.Context, a *model.Account) (int64, error)
	// GetByID loads an account by identifier.
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	// GetByUsername loads an account by username.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	// CountByUsername reports how many accounts hold the given username.
	CountByUsername(ctx context.Context, username string) (int64, error)
	// CountByEmail reports how many accounts hold the given email.
	CountByEmail(ctx context.Context, email string) (int64, error)
	// Clear drops every account. Succeeds on an empty table.
	Clear(ctx context.Context) error
}
