// Package httpapi wires the HTTP transport (Gin) to the submission service,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging with PII redaction, panic recovery,
// metrics, compression, CORS, security headers, and rate limiting.
//
// Middleware order matters:
//  1. OpenTelemetry (optional): trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after the logger, render the error page
//  5. Body size limiter
//  6. Metrics
//  7. Gzip, CORS, security headers
//
// The per-IP rate limiter is attached to POST / only; read endpoints stay
// unthrottled.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/formgate/go-intake-backend/internal/config"
	"github.com/formgate/go-intake-backend/internal/db"
	"github.com/formgate/go-intake-backend/internal/http/handlers"
	"github.com/formgate/go-intake-backend/internal/http/middleware"
	"github.com/formgate/go-intake-backend/internal/repo"
	"github.com/formgate/go-intake-backend/internal/services"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine. Dependencies flow one way: handlers ← service ← repository ← the
// injected database manager.
func RegisterRoutes(r *gin.Engine, mgr *db.Manager, cfg config.Config) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}

	subRepo := repo.NewSubmissionRepo(mgr)
	subSvc := &services.SubmissionService{Repo: subRepo}
	h := handlers.New(subSvc, mgr, tmpl, cfg.Debug)

	// 1) Trace all HTTP requests when the exporter is configured.
	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}

	// 2) Correlate requests and logs.
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (form data carries PII).
	r.Use(middleware.AccessLogger())

	// 4) Panic recovery to the generic error page.
	r.Use(middleware.Recovery(h.ErrorPage))

	// 5) Global body size limit (64 KiB is generous for a text form).
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and the /metrics endpoint.
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression for the HTML pages; /metrics negotiates its own.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// CORS posture: allow all when no allowlist is configured (helps health
	// probes and dashboards), otherwise echo only listed origins.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:   []string{"X-Request-ID"},
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"X-Request-ID"},
		}))
	}

	// Security headers, including a CSP the embedded templates satisfy.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		EnableCSP:  true,
	}))

	// Unknown paths get the generic 404 page.
	r.NoRoute(func(c *gin.Context) {
		h.ErrorPage(c, http.StatusNotFound)
	})

	// Submission throttling per client IP.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)

	r.GET("/", h.ShowForm)
	r.POST("/", rl.Handler(h.ErrorPage), h.SubmitForm)
	r.GET("/health", h.Health)
	r.GET("/submissions", h.ListSubmissions)

	return nil
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
