// Package db implements the database manager. This file contains the
// Manager type: connection lifecycle (lazy open, transparent reopen, close),
// the scoped-cursor transaction helper, and the typed query/insert/update
// operations the repository layer is built on.
package db

import (
	"context"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/formgate/go-intake-backend/internal/config"
	"github.com/formgate/go-intake-backend/internal/domain"
)

// Manager owns exactly one database handle and recreates it transparently
// when it is absent or no longer responds to a ping. All operations run
// inside a scoped cursor (a transaction that commits on success and rolls
// back on any error, releasing the cursor on every exit path).
//
// The open handle is safe for concurrent use, but reopen and Close mutate
// the shared handle without coordination; the documented deployment model is
// a single serving process in front of one manager instance.
type Manager struct {
	cfg   config.DBConfig
	trace bool

	db *gorm.DB
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithTracing enables the GORM OpenTelemetry plugin on newly opened handles.
func WithTracing() Option {
	return func(m *Manager) { m.trace = true }
}

// NewManager returns a manager for the given connection parameters. No
// connection is made until the first operation needs one.
func NewManager(cfg config.DBConfig, opts ...Option) *Manager {
	m := &Manager{cfg: cfg}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Conn returns the live database handle, opening one if necessary. A handle
// that no longer answers a ping is discarded and reopened once. Failures are
// reported as ErrConnection.
func (m *Manager) Conn(ctx context.Context) (*gorm.DB, error) {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			if err := sqlDB.PingContext(ctx); err == nil {
				return m.db, nil
			}
		}
		// Stale or severed handle: drop it and fall through to reopen.
		m.db = nil
	}

	db, err := m.open()
	if err != nil {
		log.Error().Err(err).Str("driver", m.cfg.Driver).Msg("database connection error")
		return nil, connErr(err)
	}
	m.db = db
	log.Info().Str("driver", m.cfg.Driver).Msg("database connection established")
	return m.db, nil
}

// open dials the configured driver and applies pool hints. The manager
// reuses one handle, so the pool settings are hints rather than a pool
// abstraction of their own.
func (m *Manager) open() (*gorm.DB, error) {
	var dial gorm.Dialector
	switch m.cfg.Driver {
	case config.DriverSQLite:
		// Fail early if the parent directory does not exist (instead of a
		// confusing sqlite "out of memory (14)" on some platforms).
		if dir := filepath.Dir(m.cfg.Path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
		dial = sqlite.Open(m.cfg.DSN())
	default:
		dial = mysql.Open(m.cfg.DSN())
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if m.cfg.Driver == config.DriverSQLite {
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA foreign_keys=ON;")
		db.Exec("PRAGMA busy_timeout=5000;")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(m.cfg.PoolSize)
		sqlDB.SetMaxIdleConns(m.cfg.PoolSize)
		sqlDB.SetConnMaxLifetime(m.cfg.PoolRecycle)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if m.trace {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}

	// Verify the dial actually reached the server; gorm.Open can succeed
	// lazily for some drivers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// WithCursor runs fn inside a transaction scope: committed when fn returns
// nil, rolled back when fn returns an error, with the cursor released on
// every exit path. This is the resource-safety contract every manager
// operation goes through.
func (m *Manager) WithCursor(ctx context.Context, fn func(tx *gorm.DB) error) error {
	conn, err := m.Conn(ctx)
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Transaction(fn)
}

// Query executes a read statement and returns all matching rows as
// field-name-keyed records. Failures are reported as ErrOperation.
func (m *Manager) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	var out []map[string]any
	err := m.WithCursor(ctx, func(tx *gorm.DB) error {
		return tx.Raw(query, args...).Scan(&out).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("query execution error")
		return nil, opErr(err)
	}
	return out, nil
}

// Select executes a read statement and scans all matching rows into dest,
// which must be a pointer to a slice or struct. Failures are reported as
// ErrOperation.
func (m *Manager) Select(ctx context.Context, dest any, query string, args ...any) error {
	err := m.WithCursor(ctx, func(tx *gorm.DB) error {
		return tx.Raw(query, args...).Scan(dest).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("query execution error")
		return opErr(err)
	}
	return nil
}

// Insert executes a write statement and returns the server-assigned
// identifier of the new row. Failures are reported as ErrOperation.
func (m *Manager) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := m.WithCursor(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec(query, args...).Error; err != nil {
			return err
		}
		return tx.Raw(m.lastInsertIDQuery()).Scan(&id).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("insert operation error")
		return 0, opErr(err)
	}
	return id, nil
}

// Update executes a write statement and returns the number of affected rows.
// Failures are reported as ErrOperation.
func (m *Manager) Update(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := m.WithCursor(ctx, func(tx *gorm.DB) error {
		res := tx.Exec(query, args...)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		log.Error().Err(err).Msg("update operation error")
		return 0, opErr(err)
	}
	return affected, nil
}

// lastInsertIDQuery returns the dialect-specific statement that reads the
// identifier assigned by the most recent insert on this cursor.
func (m *Manager) lastInsertIDQuery() string {
	if m.cfg.Driver == config.DriverSQLite {
		return "SELECT last_insert_rowid()"
	}
	return "SELECT LAST_INSERT_ID()"
}

// TestConnection runs a trivial round-trip query and reports whether it
// succeeded. It never returns an error; failures are logged and reported as
// false.
func (m *Manager) TestConnection(ctx context.Context) bool {
	rows, err := m.Query(ctx, "SELECT 1")
	if err != nil {
		log.Warn().Err(err).Msg("connection test failed")
		return false
	}
	return len(rows) > 0
}

// InitSchema idempotently ensures the submissions table exists with its
// secondary indexes on created_at and email. Failures are reported as
// ErrOperation.
func (m *Manager) InitSchema(ctx context.Context) error {
	conn, err := m.Conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.WithContext(ctx).AutoMigrate(&domain.Submission{}); err != nil {
		log.Error().Err(err).Msg("database initialization error")
		return opErr(err)
	}
	log.Info().Msg("database schema initialized")
	return nil
}

// Close releases the held connection if one is open. It is safe to call
// multiple times.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	m.db = nil
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	log.Info().Msg("database connection closed")
	return nil
}
