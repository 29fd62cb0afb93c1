// Command initdb is a standalone deployment bootstrap step: it connects to
// the database with a bounded linear retry loop and ensures the submissions
// table and its indexes exist. It is run once before the serving process
// starts (e.g. as a container init step) and exits non-zero when the
// database never becomes reachable.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/formgate/go-intake-backend/internal/config"
	"github.com/formgate/go-intake-backend/internal/db"
	"github.com/formgate/go-intake-backend/internal/sysutil"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	maxRetries := envInt("INITDB_MAX_RETRIES", 10)
	retryDelay := envDur("INITDB_RETRY_DELAY", 30*time.Second)

	log.Info().
		Str("driver", cfg.DB.Driver).
		Str("host", cfg.DB.Host).
		Int("port", cfg.DB.Port).
		Str("database", cfg.DB.Name).
		Str("user", cfg.DB.User).
		Msg("initializing database")

	if err := initWithRetries(context.Background(), cfg, maxRetries, retryDelay); err != nil {
		log.Error().Err(err).Msg("database initialization failed")
		os.Exit(1)
	}
	log.Info().Msg("database initialization complete")
}

// initWithRetries attempts to connect and ensure the schema, retrying a
// fixed number of times with a fixed delay between strictly sequential
// attempts.
func initWithRetries(ctx context.Context, cfg config.Config, maxRetries int, delay time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		mgr := db.NewManager(cfg.DB)

		err := tryInit(ctx, mgr, cfg.DB.Driver)
		_ = mgr.Close()
		if err == nil {
			return nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", maxRetries).
			Dur("retry_delay", delay).
			Msg("database not ready")
		if attempt < maxRetries {
			time.Sleep(delay)
		}
	}
	return lastErr
}

// tryInit performs one bootstrap attempt: connect, log the server version,
// and ensure the schema exists.
func tryInit(ctx context.Context, mgr *db.Manager, driver string) error {
	versionQuery := "SELECT VERSION()"
	if driver == config.DriverSQLite {
		versionQuery = "SELECT sqlite_version()"
	}

	rows, err := mgr.Query(ctx, versionQuery)
	if err != nil {
		return err
	}
	for _, row := range rows {
		for _, v := range row {
			log.Info().Any("version", v).Str("driver", driver).Msg("database connection successful")
		}
	}

	return mgr.InitSchema(ctx)
}

// envInt reads an integer environment variable with a default.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envDur reads a duration environment variable with a default.
func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
