// Form HTTP handlers.
//
// This file exposes the public form endpoints:
//   - GET  /   (render the empty intake form)
//   - POST /   (validate and persist a submission)
//
// Handlers are transport-thin: they pull the form fields out of the request,
// delegate to SubmissionService, and map the outcome onto a page and status
// code. The three database failure classes are distinguished here and
// nowhere else: connection failures become 503 with a "try again later"
// message, operation failures 500 with a "could not process" message, and
// anything unexpected a generic 500. Every failure path re-renders the form
// with the user's input preserved.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formgate/go-intake-backend/internal/db"
	"github.com/formgate/go-intake-backend/internal/http/middleware"
	"github.com/formgate/go-intake-backend/internal/services"
)

// User-facing messages for the submission failure classes.
const (
	msgConnectionDown = "Sorry, we are experiencing technical difficulties. Please try again later."
	msgCouldNotStore  = "Sorry, we could not process your submission. Please try again."
	msgUnexpected     = "An unexpected error occurred. Please try again."
	msgThankYou       = "Thank you! Your submission has been received successfully."
)

// formValues echoes the user's input back into the re-rendered form so a
// validation failure does not wipe what they typed.
type formValues struct {
	Name    string
	Email   string
	Message string
}

// ShowForm handles GET / and renders the empty intake form.
func (h *Handler) ShowForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, nil, formValues{})
}

// SubmitForm handles POST /.
//
// Missing form fields are treated as empty strings; the service trims and
// validates them. On any rule violation the form is re-rendered with every
// violation message and HTTP 400. On success the confirmation page is
// rendered with the new submission id.
func (h *Handler) SubmitForm(c *gin.Context) {
	vals := formValues{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	}

	id, err := h.svc.Submit(c.Request.Context(), vals.Name, vals.Email, vals.Message)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.renderForm(c, http.StatusBadRequest, vErr.Violations, vals)
		case errors.Is(err, db.ErrConnection):
			middleware.LoggerFrom(c).Error().Err(err).Msg("database connection error during form submission")
			h.renderForm(c, http.StatusServiceUnavailable, []string{msgConnectionDown}, vals)
		case errors.Is(err, db.ErrOperation):
			middleware.LoggerFrom(c).Error().Err(err).Msg("database operation error during form submission")
			h.renderForm(c, http.StatusInternalServerError, []string{msgCouldNotStore}, vals)
		default:
			middleware.LoggerFrom(c).Error().Err(err).Msg("unexpected error during form submission")
			h.renderForm(c, http.StatusInternalServerError, []string{msgUnexpected}, vals)
		}
		return
	}

	middleware.LoggerFrom(c).Info().Int64("submission_id", id).Msg("form submitted")
	h.render(c, http.StatusOK, "success.html", gin.H{
		"SubmissionID": id,
		"Notice":       msgThankYou,
	})
}

// renderForm renders the intake form with the given violation messages (nil
// for a clean form) and previously entered values.
func (h *Handler) renderForm(c *gin.Context, status int, violations []string, vals formValues) {
	h.render(c, status, "index.html", gin.H{
		"Errors": violations,
		"Values": vals,
	})
}
