// Package repo implements the data persistence layer for submissions. This
// file provides small aggregate queries used by the debug listing page.
package repo

import (
	"context"
	"time"
)

// Stats returns aggregate metadata for the submissions table: the total row
// count and the most recent created_at timestamp. When the table is empty,
// count is 0 and latest is nil.
func (r *SubmissionRepo) Stats(ctx context.Context) (count int64, latest *time.Time, err error) {
	var totals []struct {
		Total int64
	}
	if err = r.mgr.Select(ctx, &totals, "SELECT COUNT(*) AS total FROM user_submissions"); err != nil {
		return 0, nil, err
	}
	if len(totals) == 0 || totals[0].Total == 0 {
		return 0, nil, nil
	}
	count = totals[0].Total

	// Avoid MAX() (which SQLite reports as TEXT); take the newest row's
	// created_at directly.
	var rows []struct {
		CreatedAt time.Time
	}
	if err = r.mgr.Select(ctx, &rows,
		"SELECT created_at FROM user_submissions ORDER BY created_at DESC, id DESC LIMIT 1"); err != nil {
		return 0, nil, err
	}
	if len(rows) > 0 {
		latest = &rows[0].CreatedAt
	}
	return count, latest, nil
}
