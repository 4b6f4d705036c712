package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type termImportService interface {
	Parse(ctx context.Context, req service.ParseRequest) (*models.TermImportData, error)
	Commit(ctx context.Context, data models.TermImportData, actor *models.JWTClaims) (*models.CourtTermDetail, error)
}

// TermImportHandler turns extracted term text into a reviewable preview and
// commits reviewed previews.
type TermImportHandler struct {
	service termImportService
}

// NewTermImportHandler constructs the handler.
func NewTermImportHandler(svc termImportService) *TermImportHandler {
	return &TermImportHandler{service: svc}
}

// Parse godoc
// @Summary Parse term text into a preview
// @Description Nothing is persisted; the preview carries warnings and a confidence score
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body service.ParseRequest true "Extracted text"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /term-imports/parse [post]
func (h *TermImportHandler) Parse(c *gin.Context) {
	var req service.ParseRequest
	if !bindJSON(c, &req, "invalid parse payload") {
		return
	}
	preview, err := h.service.Parse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Commit godoc
// @Summary Commit a reviewed preview as a new term
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body models.TermImportData true "Reviewed preview"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /term-imports/commit [post]
func (h *TermImportHandler) Commit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var data models.TermImportData
	if !bindJSON(c, &data, "invalid import payload") {
		return
	}
	term, err := h.service.Commit(c.Request.Context(), data, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}
