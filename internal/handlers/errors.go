package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsconnecto/vsconnecto-api/internal/services"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
	"github.com/vsconnecto/vsconnecto-api/pkg/circuitbreaker"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondServiceError maps a service error onto a status code. fallback is the message
// used when nothing more specific is known.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", verr.Fields, err)
		return
	}

	var upstream *apperrors.UpstreamError
	hasUpstream := errors.As(err, &upstream)

	switch {
	case errors.Is(err, wizard.ErrStepMismatch):
		respondError(c, http.StatusConflict, "Submitted step is not the current step", err)
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		respondError(c, http.StatusConflict, "Profile submission already in progress", err)
	case errors.Is(err, wizard.ErrCompleted):
		respondError(c, http.StatusConflict, "Profile wizard already completed", err)
	case errors.Is(err, wizard.ErrNotLastStep), errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, fallback, err)
	case errors.Is(err, services.ErrStorageDisabled), errors.Is(err, circuitbreaker.ErrOpen):
		respondError(c, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	case errors.Is(err, apperrors.ErrInvalidInput):
		message := "Invalid request"
		if hasUpstream && upstream.Message != "" {
			message = upstream.Message
		}
		respondErrorWithDetails(c, http.StatusBadRequest, message, gin.H{"message": err.Error()}, err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, apperrors.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found", err)
	case hasUpstream:
		message := fallback
		if upstream.Message != "" {
			message = upstream.Message
		}
		respondError(c, http.StatusBadGateway, message, err)
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}
