// Package handlers provides the HTTP handler implementations for the intake
// service: the form pages, the health check, and the debug listing.
//
// This file defines the shared rendering utilities. Pages are rendered from
// the embedded template set into a buffer first, so a template failure can
// still produce a well-formed error page instead of a half-written body.
// Internal error text is logged with the request context and never included
// in what the client sees.
package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formgate/go-intake-backend/internal/db"
	"github.com/formgate/go-intake-backend/internal/http/middleware"
	"github.com/formgate/go-intake-backend/internal/services"
)

// Generic user-facing messages for the error page, keyed by status.
var errorPageMessages = map[int]string{
	http.StatusNotFound:            "Page not found",
	http.StatusForbidden:           "Access denied",
	http.StatusTooManyRequests:     "Too many requests. Please slow down and try again.",
	http.StatusServiceUnavailable:  "Service temporarily unavailable",
	http.StatusInternalServerError: "Internal server error",
}

// Handler bundles the dependencies the route handlers need. All of them are
// constructed in main and injected; there is no package-level state.
type Handler struct {
	svc   *services.SubmissionService
	mgr   *db.Manager
	tmpl  *template.Template
	debug bool
}

// New constructs the handler set.
//
//   - svc: submission use-cases (validation + persistence)
//   - mgr: database manager, used directly only by the health check
//   - tmpl: parsed template set (index, success, submissions, error pages)
//   - debug: enables the /submissions listing
func New(svc *services.SubmissionService, mgr *db.Manager, tmpl *template.Template, debug bool) *Handler {
	return &Handler{svc: svc, mgr: mgr, tmpl: tmpl, debug: debug}
}

// render executes the named template into a buffer and writes it with the
// given status. On template failure it logs and falls back to the error
// page; if even that fails, a plain-text 500 is written.
func (h *Handler) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("template", name).Msg("template render failed")
		if name != "error.html" {
			h.ErrorPage(c, http.StatusInternalServerError)
			return
		}
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// ErrorPage renders the generic error page for the given status code. It is
// also installed as the NoRoute, rate-limit, and panic-recovery response.
func (h *Handler) ErrorPage(c *gin.Context, status int) {
	msg := errorPageMessages[status]
	if msg == "" {
		msg = http.StatusText(status)
	}
	h.render(c, status, "error.html", gin.H{
		"Status":  status,
		"Message": msg,
	})
}

// jsonError writes a minimal JSON error body, used by the endpoints whose
// failure surface is JSON rather than HTML.
func jsonError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
