// Package repo implements the data persistence layer for submissions. It is
// a thin domain wrapper over the database manager: every method delegates to
// the manager's typed operations and passes manager errors through unchanged
// so the web layer can classify them.
package repo

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/formgate/go-intake-backend/internal/db"
	"github.com/formgate/go-intake-backend/internal/domain"
)

// SubmissionRepo provides the domain-level operations on the
// user_submissions table.
type SubmissionRepo struct {
	mgr *db.Manager
}

// NewSubmissionRepo returns a repository bound to the given manager.
func NewSubmissionRepo(mgr *db.Manager) *SubmissionRepo {
	return &SubmissionRepo{mgr: mgr}
}

// Create inserts a new submission and returns its server-assigned id.
// created_at is assigned by the database at insert time.
func (r *SubmissionRepo) Create(ctx context.Context, name, email, message string) (int64, error) {
	const q = `
		INSERT INTO user_submissions (name, email, message, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`

	id, err := r.mgr.Insert(ctx, q, name, email, message)
	if err != nil {
		log.Error().Err(err).Msg("failed to create submission")
		return 0, err
	}
	log.Info().Int64("submission_id", id).Msg("submission created")
	return id, nil
}

// GetByID fetches a submission by id. A missing row is reported as
// (nil, nil): absence is not an error.
func (r *SubmissionRepo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	const q = `
		SELECT id, name, email, message, created_at
		FROM user_submissions
		WHERE id = ?`

	var rows []domain.Submission
	if err := r.mgr.Select(ctx, &rows, q, id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListRecent returns up to limit submissions ordered most-recent-first
// (created_at descending, id descending as a tiebreak for rows created in
// the same second). A limit <= 0 yields an empty slice.
func (r *SubmissionRepo) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		return []domain.Submission{}, nil
	}

	const q = `
		SELECT id, name, email, message, created_at
		FROM user_submissions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	var rows []domain.Submission
	if err := r.mgr.Select(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Submission{}
	}
	return rows, nil
}
