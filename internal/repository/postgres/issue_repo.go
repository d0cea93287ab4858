package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civitrack/civitrack/internal/errs"
	"github.com/civitrack/civitrack/internal/model"
)

// IssueRepo implements IssueRepository using PostgreSQL.
type IssueRepo struct{ db *DB }

// NewIssueRepo constructs an issue repository.
func NewIssueRepo(db *DB) *IssueRepo { return &IssueRepo{db: db} }

// Create inserts a new issue row and returns the assigned id.
func (r *IssueRepo) Create(ctx context.Context, is *model.Issue) (int64, error) {
	const q = `
INSERT INTO issues (title, location, description, status, image, author)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q,
		is.Title, is.Location, is.Description, string(is.Status), is.Image, is.Author,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, errs.ErrAlreadyExists
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID selects an issue by id.
func (r *IssueRepo) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	const q = `
SELECT id, title, location, description, status, image, author, created_at, updated_at
FROM issues WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var is model.Issue
	if err := scanIssue(row, &is); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &is, nil
}

// GetAll returns every issue ordered by id, i.e. insertion order.
// An empty table yields an empty slice, not an error.
func (r *IssueRepo) GetAll(ctx context.Context) ([]model.Issue, error) {
	const q = `
SELECT id, title, location, description, status, image, author, created_at, updated_at
FROM issues
ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Issue{}
	for rows.Next() {
		var is model.Issue
		if err = scanIssue(rows, &is); err != nil {
			return nil, err
		}
		out = append(out, is)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByTitle reports how many issues hold the given title.
func (r *IssueRepo) CountByTitle(ctx context.Context, title string) (int64, error) {
	const q = `SELECT COUNT(id) FROM issues WHERE title=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, title).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus persists the new status and the updated timestamp.
func (r *IssueRepo) UpdateStatus(ctx context.Context, id int64, st model.Status, updatedAt time.Time) error {
	const q = `UPDATE issues SET status=$2, updated_at=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, string(st), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Clear drops every issue. A no-op delete on an empty table is not an error.
func (r *IssueRepo) Clear(ctx context.Context) error {
	const q = `DELETE FROM issues`
	_, err := r.db.Pool.Exec(ctx, q)
	return err
}

// scanIssue reads one issue row; pgx.Row and pgx.Rows share the Scan shape.
func scanIssue(row pgx.Row, is *model.Issue) error {
	var status string
	if err := row.Scan(
		&is.ID, &is.Title, &is.Location, &is.Description, &status,
		&is.Image, &is.Author, &is.CreatedAt, &is.UpdatedAt,
	); err != nil {
		return err
	}
	is.Status = model.Status(status)
	return nil
}
