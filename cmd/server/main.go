// Command server runs the intake web service: it loads configuration,
// opens the database manager, makes a best-effort pass at schema
// initialization, and serves the HTTP routes until interrupted.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/formgate/go-intake-backend/internal/config"
	"github.com/formgate/go-intake-backend/internal/db"
	httpapi "github.com/formgate/go-intake-backend/internal/http"
	"github.com/formgate/go-intake-backend/internal/observability"
	"github.com/formgate/go-intake-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("profile", cfg.Profile).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	var mgrOpts []db.Option
	if cfg.OTEL.Enabled {
		mgrOpts = append(mgrOpts, db.WithTracing())
	}
	mgr := db.NewManager(cfg.DB, mgrOpts...)

	// Best effort: a database that is briefly unavailable at boot should not
	// keep the form from serving; cmd/initdb covers deployment bootstrap.
	if err := mgr.InitSchema(ctx); err != nil {
		log.Error().Err(err).Msg("failed to initialize database schema")
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	if err := httpapi.RegisterRoutes(engine, mgr, cfg); err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("profile", cfg.Profile).
			Bool("debug", cfg.Debug).
			Msg("starting intake service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if err := mgr.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}
}
