package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/formgate/go-intake-backend/internal/config"
	"github.com/formgate/go-intake-backend/internal/db"
)

func newTestRepo(t *testing.T) *SubmissionRepo {
	t.Helper()

	mgr := db.NewManager(config.DBConfig{
		Driver:      config.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "repo_test.db"),
		PoolSize:    2,
		PoolRecycle: time.Hour,
	})
	t.Cleanup(func() { _ = mgr.Close() })
	if err := mgr.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return NewSubmissionRepo(mgr)
}

func TestCreateAndGetByID(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx, "Ada Lovelace", "ada@example.com", "hello there")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Create returned id %d, want > 0", id)
	}

	got, err := r.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatalf("GetByID returned nil for existing row")
	}
	if got.Name != "Ada Lovelace" || got.Email != "ada@example.com" || got.Message != "hello there" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at must be assigned by the database")
	}
}

func TestGetByID_AbsenceIsNotAnError(t *testing.T) {
	r := newTestRepo(t)

	got, err := r.GetByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing row, got %+v", got)
	}
}

func TestListRecent_OrderAndLimit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 4; i++ {
		id, err := r.Create(ctx, "User", "user@example.com", "")
		if err != nil {
			t.Fatalf("Create #%d: %v", i+1, err)
		}
		ids = append(ids, id)
	}

	rows, err := r.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Rows created within the same second fall back to id ordering, so the
	// newest id must come first.
	if int64(rows[0].ID) != ids[3] {
		t.Fatalf("rows[0].ID = %d, want newest id %d", rows[0].ID, ids[3])
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].ID >= rows[i-1].ID {
			t.Fatalf("rows not in most-recent-first order: %d before %d", rows[i-1].ID, rows[i].ID)
		}
	}
}

func TestListRecent_EmptyAndNonPositiveLimit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	rows, err := r.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("empty table should yield an empty non-nil slice, got %#v", rows)
	}

	rows, err = r.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent(0): %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("limit 0 should yield an empty non-nil slice, got %#v", rows)
	}
}

func TestStats(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	count, latest, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats (empty): %v", err)
	}
	if count != 0 || latest != nil {
		t.Fatalf("empty table stats = (%d, %v), want (0, nil)", count, latest)
	}

	for i := 0; i < 2; i++ {
		if _, err := r.Create(ctx, "User", "user@example.com", ""); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	count, latest, err = r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if latest == nil || latest.IsZero() {
		t.Fatalf("latest = %v, want the newest created_at", latest)
	}
}

func TestRepo_PassesManagerErrorsThrough(t *testing.T) {
	// A manager whose database cannot be opened surfaces connection errors
	// through every repository method unchanged.
	mgr := db.NewManager(config.DBConfig{
		Driver:      config.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "missing", "sub", "db.sqlite"),
		PoolSize:    1,
		PoolRecycle: time.Hour,
	})
	r := NewSubmissionRepo(mgr)
	ctx := context.Background()

	if _, err := r.Create(ctx, "A", "a@x.com", ""); !errors.Is(err, db.ErrConnection) {
		t.Fatalf("Create error = %v, want ErrConnection", err)
	}
	if _, err := r.GetByID(ctx, 1); !errors.Is(err, db.ErrConnection) {
		t.Fatalf("GetByID error = %v, want ErrConnection", err)
	}
	if _, err := r.ListRecent(ctx, 5); !errors.Is(err, db.ErrConnection) {
		t.Fatalf("ListRecent error = %v, want ErrConnection", err)
	}
	if _, _, err := r.Stats(ctx); !errors.Is(err, db.ErrConnection) {
		t.Fatalf("Stats error = %v, want ErrConnection", err)
	}
}
