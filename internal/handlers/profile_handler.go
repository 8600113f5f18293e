package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsconnecto/vsconnecto-api/internal/middleware"
	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/services"
)

// ProfileHandler serves the caller's own profile
type ProfileHandler struct {
	service services.ProfileServiceInterface
}

func NewProfileHandler(service services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/v1/users/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		Success: true,
		Data:    &models.ProfileData{User: user},
	})
}

// UpdateProfile handles PUT /api/v1/users/profile
// Applies a partial update; omitted fields keep their stored values.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.UpdateProfileRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), session, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    &models.ProfileData{User: user},
	})
}
