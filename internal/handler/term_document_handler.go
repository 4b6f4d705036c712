package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type termDocumentService interface {
	Upload(ctx context.Context, upload service.Upload, actor *models.JWTClaims) (*models.TermDocument, error)
	List(ctx context.Context, filter models.TermDocumentFilter) ([]models.TermDocument, error)
	Get(ctx context.Context, id string) (*models.TermDocument, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	DownloadURL(ctx context.Context, id string) (*service.SignedURL, error)
	Open(ctx context.Context, token string) (*service.FileDownload, error)
}

// TermDocumentHandler manages uploaded term source documents.
type TermDocumentHandler struct {
	service termDocumentService
}

// NewTermDocumentHandler constructs the handler.
func NewTermDocumentHandler(svc termDocumentService) *TermDocumentHandler {
	return &TermDocumentHandler{service: svc}
}

// Upload godoc
// @Summary Upload term document
// @Description The content type is sniffed from the file, not taken from the request
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or image"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /term-documents [post]
func (h *TermDocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	upload, closeFile, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	doc, err := h.service.Upload(c.Request.Context(), upload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List term documents
// @Tags Documents
// @Produce json
// @Param term_id query string false "Documents attached to this term"
// @Param unattached query bool false "Only documents not yet attached to a term"
// @Success 200 {object} response.Envelope
// @Router /term-documents [get]
func (h *TermDocumentHandler) List(c *gin.Context) {
	filter := models.TermDocumentFilter{TermID: strings.TrimSpace(c.Query("term_id"))}
	if raw := c.Query("unattached"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unattached must be a boolean"))
			return
		}
		filter.Unattached = value
	}
	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Get godoc
// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /term-documents/{id} [get]
func (h *TermDocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// DownloadURL godoc
// @Summary Signed download link for a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /term-documents/{id}/download-url [get]
func (h *TermDocumentHandler) DownloadURL(c *gin.Context) {
	signed, err := h.service.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signed, nil)
}

// Delete godoc
// @Summary Delete document and its file
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /term-documents/{id} [delete]
func (h *TermDocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Serve godoc
// @Summary Download document via signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/documents/{token} [get]
func (h *TermDocumentHandler) Serve(c *gin.Context) {
	result, err := h.service.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamDownload(c, result, "attachment")
}
