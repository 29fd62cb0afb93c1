// Health check endpoint for monitoring and deployment probes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// healthResponse is the JSON body returned by GET /health.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health handles GET /health. It runs a round-trip query against the
// database and reports 200 when it succeeds, 503 otherwise. TestConnection
// never raises, so the unhealthy path is a plain report, not an error.
func (h *Handler) Health(c *gin.Context) {
	if h.mgr.TestConnection(c.Request.Context()) {
		c.JSON(http.StatusOK, healthResponse{
			Status:   "healthy",
			Database: "connected",
		})
		return
	}
	c.JSON(http.StatusServiceUnavailable, healthResponse{
		Status:   "unhealthy",
		Database: "disconnected",
	})
}
