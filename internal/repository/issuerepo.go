package repository

import (
	"context"
	"time"

	"github.com/civitrack/civitrack/internal/model"
)

// IssueRepository provides keyed access to reported issues.
type IssueRepository interface {
	// Create inserts a new issue and returns the assigned identifier.
	Create(ctx context.Context, is *model.Issue) (int64, error)
	// GetByID loads an issue by identifier.
	GetByID(ctx context.Context, id int64) (*model.Issue, error)
	// GetAll returns every issue in insertion order; empty slice when none exist.
	GetAll(ctx context.Context) ([]model.Issue, error)
	// CountByTitle reports how many issues hold the given title.
	CountByTitle(ctx context.Context, title string) (int64, error)
	// UpdateStatus persists a new status and refreshes the updated timestamp.
	UpdateStatus(ctx context.Context, id int64, st model.Status, updatedAt time.Time) error
	// Clear drops every issue. Succeeds on an empty table.
	Clear(ctx context.Context) error
}
