package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/dto"
	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type scheduleExportService interface {
	CreateExport(ctx context.Context, termID string, req dto.ExportRequest, actor *models.JWTClaims) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.FileDownload, error)
}

// ExportHandler queues schedule exports and serves their results.
type ExportHandler struct {
	service scheduleExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc scheduleExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Queue a schedule export
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.ExportRequest true "csv or pdf"
// @Success 202 {object} response.Envelope
// @Router /terms/{id}/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ExportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	job, err := h.service.CreateExport(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /files/exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	result, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamDownload(c, result, "attachment")
}
