// Package services – SubmissionService
//
// This file implements the SubmissionService, which validates intake form
// input and persists accepted submissions through the repository. Validation
// failures are returned as *ValidationError carrying every violated rule;
// database failures from the repository (connection or operation kinds) are
// passed through unchanged so the handler layer can map them to HTTP results.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/formgate/go-intake-backend/internal/domain"
	"github.com/formgate/go-intake-backend/internal/repo"
)

// SubmissionRepo is the repository surface the service depends on. It is
// satisfied by *repo.SubmissionRepo and by test fakes.
type SubmissionRepo interface {
	Create(ctx context.Context, name, email, message string) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Submission, error)
	Stats(ctx context.Context) (count int64, latest *time.Time, err error)
}

var _ SubmissionRepo = (*repo.SubmissionRepo)(nil)

// SubmissionService implements the use-cases around form submissions.
type SubmissionService struct {
	Repo SubmissionRepo
}

// Submit validates the raw form input and, when valid, stores a new
// submission and returns its id.
//
// Inputs are trimmed of surrounding whitespace first; a missing field is
// indistinguishable from an empty one. On any rule violation the returned
// error is a *ValidationError listing every violated rule, and nothing is
// persisted.
func (s *SubmissionService) Submit(ctx context.Context, name, email, message string) (int64, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	if violations := Validate(name, email, message); len(violations) > 0 {
		return 0, &ValidationError{Violations: violations}
	}
	return s.Repo.Create(ctx, name, email, message)
}

// Get returns the submission with the given id, or (nil, nil) when no such
// submission exists.
func (s *SubmissionService) Get(ctx context.Context, id int64) (*domain.Submission, error) {
	return s.Repo.GetByID(ctx, id)
}

// ListRecent returns up to limit submissions, newest first.
func (s *SubmissionService) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	return s.Repo.ListRecent(ctx, limit)
}

// Stats returns the total submission count and the newest created_at, nil
// when the table is empty.
func (s *SubmissionService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Repo.Stats(ctx)
}

// Validate checks the (already trimmed) field values against the intake
// rules and returns the list of violation messages, empty when the input is
// acceptable.
//
// Rules:
//   - name: required, at most MaxNameLen characters
//   - email: required, at most MaxEmailLen characters, must contain '@' with
//     a '.' somewhere after the last '@'
//   - message: optional, at most MaxMessageLen characters
func Validate(name, email, message string) []string {
	var violations []string

	switch {
	case name == "":
		violations = append(violations, MsgNameRequired)
	case utf8.RuneCountInString(name) > MaxNameLen:
		violations = append(violations, MsgNameTooLong)
	}

	switch {
	case email == "":
		violations = append(violations, MsgEmailRequired)
	case utf8.RuneCountInString(email) > MaxEmailLen:
		violations = append(violations, MsgEmailTooLong)
	case !emailShapeOK(email):
		violations = append(violations, MsgEmailInvalid)
	}

	if message != "" && utf8.RuneCountInString(message) > MaxMessageLen {
		violations = append(violations, MsgMessageTooLong)
	}

	return violations
}

// emailShapeOK applies the deliberately loose address check: the value must
// contain an '@', and the part after the last '@' must contain a '.'.
func emailShapeOK(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
