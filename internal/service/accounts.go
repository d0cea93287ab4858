// Package service contains application services for accounts and issues.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/civitrack/civitrack/internal/crypto"
	"github.com/civitrack/civitrack/internal/errs"
	"github.com/civitrack/civitrack/internal/limiter"
	"github.com/civitrack/civitrack/internal/model"
	"github.com/civitrack/civitrack/internal/repository"
)

// AccountService defines registration and credential operations.
type AccountService interface {
	// Register creates a new account with a hashed password.
	Register(ctx context.Context, username, password, email string, worker bool) (int64, error)
	// Login verifies a set of credentials.
	Login(ctx context.Context, username, password string) error
	// IsWorker reports whether the named account is a council worker.
	IsWorker(ctx context.Context, username string) (bool, error)
	// ClearAll drops every account.
	ClearAll(ctx context.Context) error
}

type AccountServiceImpl struct {
	accounts repository.AccountRepository
	lim      limiter.Limiter
}

// NewAccountService constructs AccountService with required dependencies.
func NewAccountService(accounts repository.AccountRepository, lim limiter.Limiter) *AccountServiceImpl {
	return &AccountServiceImpl{accounts: accounts, lim: lim}
}

// Register validates the fields, checks username and email uniqueness and
// inserts the account. The password is stored only as a bcrypt hash.
func (s *AccountServiceImpl) Register(ctx context.Context, username, password, email string, worker bool) (int64, error) {
	if username == "" {
		return 0, fmt.Errorf("missing field %q: %w", "username", errs.ErrValidation)
	}
	if password == "" {
		return 0, fmt.Errorf("missing field %q: %w", "password", errs.ErrValidation)
	}
	if email == "" {
		return 0, fmt.Errorf("missing field %q: %w", "email", errs.ErrValidation)
	}

	n, err := s.accounts.CountByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("count username: %w", err)
	}
	if n != 0 {
		return 0, fmt.Errorf("username %q already in use: %w", username, errs.ErrAlreadyExists)
	}
	n, err = s.accounts.CountByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("count email: %w", err)
	}
	if n != 0 {
		return 0, fmt.Errorf("email address %q is already in use: %w", email, errs.ErrAlreadyExists)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.accounts.Create(ctx, &model.Account{
		Username: username,
		PwdHash:  hash,
		Email:    email,
		Worker:   worker,
	})
	if err != nil {
		// The unique index closes the count/insert race.
		return 0, fmt.Errorf("insert account %q: %w", username, err)
	}
	return id, nil
}

// Login checks the rate limiter, then the stored hash. Session establishment
// is the caller's concern.
func (s *AccountServiceImpl) Login(ctx context.Context, username, password string) error {
	allowed, retryAfter, err := s.lim.Allow(ctx, username)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("account %q locked for %s: %w", username, retryAfter.Round(time.Second), errs.ErrRateLimited)
	}

	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("username %q not found: %w", username, errs.ErrNotFound)
	}
	if !crypto.VerifyPassword(password, a.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username); ferr == nil && blocked {
			return fmt.Errorf("account %q locked: %w", username, errs.ErrRateLimited)
		}
		return fmt.Errorf("invalid password for account %q: %w", username, errs.ErrUnauthorized)
	}

	// Best effort, a failed reset must not fail the login.
	_ = s.lim.Success(ctx, username)
	return nil
}

// IsWorker looks up the worker flag for the named account.
func (s *AccountServiceImpl) IsWorker(ctx context.Context, username string) (bool, error) {
	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("username %q not found: %w", username, errs.ErrNotFound)
	}
	return a.Worker, nil
}

// ClearAll drops every account. Clearing an already-empty store succeeds.
func (s *AccountServiceImpl) ClearAll(ctx context.Context) error {
	return s.accounts.Clear(ctx)
}
