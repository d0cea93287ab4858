package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civitrack/civitrack/internal/crypto"
	"github.com/civitrack/civitrack/internal/errs"
	"github.com/civitrack/civitrack/internal/limiter"
	"github.com/civitrack/civitrack/internal/model"
	"github.com/civitrack/civitrack/internal/repository"
)

type fakeAccounts struct {
	byName map[string]*model.Account
	nextID int64

	createErr error
	countErr  error
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.Account{}
	}
	if _, exists := f.byName[a.Username]; exists {
		return 0, errs.ErrAlreadyExists
	}
	f.nextID++
	cpy := *a
	cpy.ID = f.nextID
	f.byName[a.Username] = &cpy
	return cpy.ID, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*model.Account, error) {
	for _, a := range f.byName {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	a, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAccounts) CountByUsername(_ context.Context, username string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	if _, ok := f.byName[username]; ok {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeAccounts) CountByEmail(_ context.Context, email string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	for _, a := range f.byName {
		if a.Email == email {
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAccounts) Clear(context.Context) error {
	f.byName = map[string]*model.Account{}
	return nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string) error {
	l.successCalls++
	return nil
}
func (l *fakeLimiter) Failure(context.Context, string) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, nil
}

func newAccountService() (*AccountServiceImpl, *fakeAccounts, *fakeLimiter) {
	repo := &fakeAccounts{}
	lim := &fakeLimiter{allowOK: true}
	return NewAccountService(repo, lim), repo, lim
}

func TestRegister_StoresHashedPassword(t *testing.T) {
	svc, repo, _ := newAccountService()
	ctx := context.Background()

	id, err := svc.Register(ctx, "doej", "password", "doej@example.com", true)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	a := repo.byName["doej"]
	require.NotNil(t, a)
	require.True(t, a.Worker)
	require.NotContains(t, string(a.PwdHash), "password")
	require.True(t, crypto.VerifyPassword("password", a.PwdHash))
}

func TestRegister_MissingFields(t *testing.T) {
	svc, repo, _ := newAccountService()
	ctx := context.Background()

	for _, tc := range []struct{ user, pass, email string }{
		{"", "password", "doej@example.com"},
		{"doej", "", "doej@example.com"},
		{"doej", "password", ""},
	} {
		_, err := svc.Register(ctx, tc.user, tc.pass, tc.email, false)
		require.ErrorIs(t, err, errs.ErrValidation)
	}
	require.Empty(t, repo.byName)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "doej", "password", "doej@example.com", false)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "doej", "other", "other@example.com", false)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.Contains(t, err.Error(), `username "doej" already in use`)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "doej", "password", "doej@example.com", false)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "roej", "password", "doej@example.com", false)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.Contains(t, err.Error(), `email address "doej@example.com" is already in use`)
}

func TestLogin(t *testing.T) {
	svc, _, lim := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "doej", "password", "doej@example.com", false)
	require.NoError(t, err)

	require.NoError(t, svc.Login(ctx, "doej", "password"))
	require.Equal(t, 1, lim.successCalls)

	err = svc.Login(ctx, "doej", "wrong")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, 1, lim.failureCalls)

	err = svc.Login(ctx, "ghost", "password")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Contains(t, err.Error(), `username "ghost" not found`)
}

func TestLogin_RateLimited(t *testing.T) {
	svc, _, lim := newAccountService()
	ctx := context.Background()

	lim.allowOK = false
	err := svc.Login(ctx, "doej", "password")
	require.ErrorIs(t, err, errs.ErrRateLimited)

	// Failure that trips the threshold reports the lock, not bad credentials.
	lim.allowOK = true
	lim.failBlocked = true
	_, err = svc.Register(ctx, "doej", "password", "doej@example.com", false)
	require.NoError(t, err)
	err = svc.Login(ctx, "doej", "wrong")
	require.ErrorIs(t, err, errs.ErrRateLimited)
}

func TestIsWorker(t *testing.T) {
	svc, _, _ := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "doej", "password", "doej@example.com", true)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "roej", "password", "roej@example.com", false)
	require.NoError(t, err)

	ok, err := svc.IsWorker(ctx, "doej")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsWorker(ctx, "roej")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.IsWorker(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAccountClearAll_EmptyStoreOK(t *testing.T) {
	svc, _, _ := newAccountService()
	ctx := context.Background()

	require.NoError(t, svc.ClearAll(ctx))
	require.NoError(t, svc.ClearAll(ctx))
}
