package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/civitrack/civitrack/internal/errs"
	"github.com/civitrack/civitrack/internal/model"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row and returns the assigned id.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) (int64, error) {
	const q = `
INSERT INTO accounts (username, pwd_hash, email, worker)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q, a.Username, a.PwdHash, a.Email, a.Worker).Scan(&id)
	if isUniqueViolation(err) {
		return 0, errs.ErrAlreadyExists
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID selects an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	const q = `
SELECT id, username, pwd_hash, email, worker, created_at
FROM accounts WHERE id=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `
SELECT id, username, pwd_hash, email, worker, created_at
FROM accounts WHERE username=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, username))
}

// CountByUsername reports how many accounts hold the given username.
func (r *AccountRepo) CountByUsername(ctx context.Context, username string) (int64, error) {
	const q = `SELECT COUNT(id) FROM accounts WHERE username=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, username).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountByEmail reports how many accounts hold the given email.
func (r *AccountRepo) CountByEmail(ctx context.Context, email string) (int64, error) {
	const q = `SELECT COUNT(id) FROM accounts WHERE email=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, email).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear drops every account. A no-op delete on an empty table is not an error.
func (r *AccountRepo) Clear(ctx context.Context) error {
	const q = `DELETE FROM accounts`
	_, err := r.db.Pool.Exec(ctx, q)
	return err
}

func (r *AccountRepo) scanOne(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Username, &a.PwdHash, &a.Email, &a.Worker, &a.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &a, nil
}
