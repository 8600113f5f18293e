package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsconnecto/vsconnecto-api/internal/middleware"
	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/services"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
)

// StartWizardRequest is the optional body of POST /users/profile/wizard
type StartWizardRequest struct {
	Edit bool `json:"edit"`
}

// SubmitStepRequest carries the input of one wizard step. Data is decoded by the step itself.
type SubmitStepRequest struct {
	Step string          `json:"step" binding:"required"`
	Data json.RawMessage `json:"data" binding:"required"`
}

// WizardResponse wraps a wizard snapshot
type WizardResponse struct {
	Success bool            `json:"success"`
	Wizard  wizard.Snapshot `json:"wizard"`
}

// WizardHandler drives the profile completion wizard
type WizardHandler struct {
	service services.WizardServiceInterface
}

func NewWizardHandler(service services.WizardServiceInterface) *WizardHandler {
	return &WizardHandler{service: service}
}

// Start handles POST /api/v1/users/profile/wizard
// An empty body starts a fresh wizard; {"edit": true} seeds it from the stored profile.
func (h *WizardHandler) Start(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req StartWizardRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil && !errors.Is(bindErr, io.EOF) {
		respondBindError(c, bindErr)
		return
	}

	snap, err := h.service.Start(c.Request.Context(), session, req.Edit)
	if err != nil {
		respondServiceError(c, err, "Failed to start profile wizard")
		return
	}

	c.JSON(http.StatusCreated, WizardResponse{Success: true, Wizard: snap})
}

// State handles GET /api/v1/users/profile/wizard
func (h *WizardHandler) State(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	snap, err := h.service.State(session)
	if err != nil {
		respondServiceError(c, err, "Failed to load profile wizard")
		return
	}

	c.JSON(http.StatusOK, WizardResponse{Success: true, Wizard: snap})
}

// Submit handles POST /api/v1/users/profile/wizard/steps
// On the last step this persists the profile and ends the wizard.
func (h *WizardHandler) Submit(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req SubmitStepRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	step, ok := wizard.ParseStep(req.Step)
	if !ok {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed",
			[]wizard.FieldError{{Field: "step", Message: "Unknown step"}}, nil)
		return
	}

	snap, err := h.service.Submit(c.Request.Context(), session, step, req.Data)
	if err != nil {
		respondServiceError(c, err, "Failed to save profile")
		return
	}

	c.JSON(http.StatusOK, WizardResponse{Success: true, Wizard: snap})
}

// Back handles POST /api/v1/users/profile/wizard/back
func (h *WizardHandler) Back(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	snap, err := h.service.Back(session)
	if err != nil {
		respondServiceError(c, err, "Failed to go back")
		return
	}

	c.JSON(http.StatusOK, WizardResponse{Success: true, Wizard: snap})
}

// Cancel handles DELETE /api/v1/users/profile/wizard
func (h *WizardHandler) Cancel(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	h.service.Cancel(session)
	c.Status(http.StatusNoContent)
}

// UploadDocument handles POST /api/v1/users/profile/wizard/documents
// Returns the stored URL; the client submits it with the documents step.
func (h *WizardHandler) UploadDocument(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.UploadDocumentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	url, err := h.service.UploadDocument(c.Request.Context(), session, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to upload document")
		return
	}

	c.JSON(http.StatusOK, models.UploadDocumentResponse{Success: true, URL: url})
}

// Catalog handles GET /api/v1/users/profile/wizard/catalog
// Lists the option sets the wizard screens choose from.
func (h *WizardHandler) Catalog(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, wizard.GetCatalog())
}
