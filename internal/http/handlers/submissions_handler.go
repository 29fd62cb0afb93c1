// Debug listing of recent submissions.
//
// GET /submissions is an operator convenience, gated on debug mode: in
// production it answers 403 without touching the database.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formgate/go-intake-backend/internal/http/middleware"
)

// maxListedSubmissions caps the debug listing.
const maxListedSubmissions = 50

// ListSubmissions handles GET /submissions. Unless the application runs in
// debug mode it returns 403. Otherwise it renders up to the 50 most recent
// submissions together with table-level stats. Unexpected failures produce
// a JSON error body with HTTP 500.
func (h *Handler) ListSubmissions(c *gin.Context) {
	if !h.debug {
		c.String(http.StatusForbidden, "Access denied")
		return
	}

	ctx := c.Request.Context()
	subs, err := h.svc.ListRecent(ctx, maxListedSubmissions)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("error retrieving submissions")
		jsonError(c, http.StatusInternalServerError, "Failed to retrieve submissions")
		return
	}

	total, latest, err := h.svc.Stats(ctx)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("error retrieving submission stats")
		jsonError(c, http.StatusInternalServerError, "Failed to retrieve submissions")
		return
	}

	h.render(c, http.StatusOK, "submissions.html", gin.H{
		"Submissions": subs,
		"Total":       total,
		"Latest":      latest,
	})
}
