// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request correlation and logging chain:
//
//   - RequestID() ensures every request carries a stable correlation ID
//     (propagated via X-Request-ID and stored in the Gin context).
//   - AccessLogger() emits structured zerolog access logs with obvious PII
//     scrubbed. The intake form receives names and email addresses, so query
//     strings and headers are redacted before they reach the log stream, and
//     request bodies are never logged at all.
//   - Recovery() converts panics into a generic 500 response rendered by the
//     caller-supplied function, after logging the stack trace.
//   - LoggerFrom() retrieves the request-scoped logger inside handlers.
//
// Recommended order: RequestID → AccessLogger → Recovery, so panics are
// logged with the correlation ID attached.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key for the request-scoped logger.
	loggerKey = "logger"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// PII patterns scrubbed from logged query strings and header values.
// Email redaction runs before the digits-only phone pattern so address-local
// digits are not half-matched.
var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused; otherwise a new UUIDv4 is generated.
// The ID is written back to the response header and stored in the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// AccessLogger writes one structured log line per request, scrubbed of PII.
//
// It records method, route path, redacted query, remote IP, user agent,
// correlation ID, status, latency, and response size, and stores a
// request-scoped zerolog.Logger in the context for handlers to enrich.
// Level follows the outcome: error for 5xx, warn for 4xx, info otherwise.
func AccessLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetString(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ev := l.With().
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", redact(c.Errors.String())).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery intercepts panics, logs the stack trace with the correlation ID,
// and responds with a generic 500 via render. The panic value itself never
// reaches the client.
func Recovery(render func(c *gin.Context, status int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", c.GetString(requestIDKey)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					render(c, http.StatusInternalServerError)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger attached by
// AccessLogger. When none is attached a fallback logger is returned, so
// callers never need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// RequestIDFrom returns the correlation ID attached by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// redact scrubs email addresses and phone-shaped digit runs from s.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// truncate caps s at max bytes, appending an ellipsis when cut. Byte-level
// truncation is acceptable for log output.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
