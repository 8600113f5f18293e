package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/services"
)

type ProviderHandler struct {
	service services.ProviderServiceInterface
}

func NewProviderHandler(service services.ProviderServiceInterface) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// Search handles GET /api/v1/users/search-providers
func (h *ProviderHandler) Search(c *gin.Context) {
	var filter models.ProviderSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	providers, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to search providers")
		return
	}

	c.JSON(http.StatusOK, models.ProviderSearchResponse{
		Success: true,
		Count:   len(providers),
		Data:    providers,
	})
}
