package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civitrack/civitrack/internal/errs"
	"github.com/civitrack/civitrack/internal/model"
	"github.com/civitrack/civitrack/internal/repository"
)

// IssueService defines issue submission, retrieval and workflow operations.
type IssueService interface {
	// Create validates and inserts a new issue, returning the assigned id.
	Create(ctx context.Context, sub model.IssueSubmission) (int64, error)
	// GetAll returns every issue in insertion order, possibly empty.
	GetAll(ctx context.Context) ([]model.Issue, error)
	// Get returns a single issue by id.
	Get(ctx context.Context, id int64) (*model.Issue, error)
	// UpdateStatus applies the workflow transition and returns the new status.
	UpdateStatus(ctx context.Context, id int64, requested model.Status) (model.Status, error)
	// ClearAll drops every issue.
	ClearAll(ctx context.Context) error
}

type IssueServiceImpl struct {
	issues repository.IssueRepository
	log    *zap.Logger
	now    func() time.Time
}

// NewIssueService constructs IssueService with required dependencies.
func NewIssueService(issues repository.IssueRepository, log *zap.Logger) *IssueServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &IssueServiceImpl{issues: issues, log: log, now: time.Now}
}

// Create checks every submitted field is present, enforces title uniqueness
// and inserts the record. A fresh submission always starts in status new.
func (s *IssueServiceImpl) Create(ctx context.Context, sub model.IssueSubmission) (int64, error) {
	if err := validateSubmission(sub); err != nil {
		return 0, err
	}

	n, err := s.issues.CountByTitle(ctx, sub.Title)
	if err != nil {
		return 0, fmt.Errorf("count title: %w", err)
	}
	if n != 0 {
		return 0, fmt.Errorf("title %q already in use: %w", sub.Title, errs.ErrAlreadyExists)
	}

	id, err := s.issues.Create(ctx, &model.Issue{
		Title:       sub.Title,
		Location:    sub.Location,
		Description: sub.Description,
		Status:      model.StatusNew,
		Image:       sub.Image,
		Author:      sub.Author,
	})
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			// Lost the race between the count and the insert.
			return 0, fmt.Errorf("title %q already in use: %w", sub.Title, errs.ErrAlreadyExists)
		}
		s.log.Error("issue insert failed", zap.String("title", sub.Title), zap.Error(err))
		return 0, fmt.Errorf("insert issue: %v: %w", err, errs.ErrPersistence)
	}
	return id, nil
}

// validateSubmission rejects any submission with an empty required field.
// Only string emptiness is checked; non-string fields carry their own
// zero values legitimately.
func validateSubmission(sub model.IssueSubmission) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", sub.Title},
		{"location", sub.Location},
		{"description", sub.Description},
		{"status", string(sub.Status)},
		{"image", sub.Image},
		{"author", sub.Author},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("missing info (%s): %w", f.name, errs.ErrValidation)
		}
	}
	return nil
}

// GetAll returns every stored issue; an empty store yields an empty slice.
func (s *IssueServiceImpl) GetAll(ctx context.Context) ([]model.Issue, error) {
	return s.issues.GetAll(ctx)
}

// Get returns the issue with the given id.
func (s *IssueServiceImpl) Get(ctx context.Context, id int64) (*model.Issue, error) {
	is, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("no information for issue with id %d: %w", id, errs.ErrNotFound)
	}
	return is, nil
}

// UpdateStatus loads the current state, runs the transition function and
// persists the outcome together with a fresh updated timestamp.
func (s *IssueServiceImpl) UpdateStatus(ctx context.Context, id int64, requested model.Status) (model.Status, error) {
	if id <= 0 {
		return "", fmt.Errorf("missing issue id: %w", errs.ErrValidation)
	}
	is, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("no information for issue with id %d: %w", id, errs.ErrNotFound)
	}

	next := model.NextStatus(is.Status, requested)
	if err := s.issues.UpdateStatus(ctx, id, next, s.now()); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", fmt.Errorf("no information for issue with id %d: %w", id, errs.ErrNotFound)
		}
		s.log.Error("status update failed", zap.Int64("id", id), zap.Error(err))
		return "", fmt.Errorf("update issue %d: %v: %w", id, err, errs.ErrPersistence)
	}
	return next, nil
}

// ClearAll drops every issue. Clearing an already-empty store succeeds.
func (s *IssueServiceImpl) ClearAll(ctx context.Context) error {
	return s.issues.Clear(ctx)
}
