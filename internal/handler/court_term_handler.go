package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type courtTermService interface {
	List(ctx context.Context, filter models.CourtTermFilter) ([]models.CourtTerm, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.CourtTermDetail, error)
	Create(ctx context.Context, req service.CourtTermRequest) (*models.CourtTerm, error)
	Update(ctx context.Context, id string, req service.CourtTermRequest) (*models.CourtTerm, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// CourtTermHandler exposes court term endpoints.
type CourtTermHandler struct {
	service courtTermService
}

// NewCourtTermHandler constructs a court term handler.
func NewCourtTermHandler(svc courtTermService) *CourtTermHandler {
	return &CourtTermHandler{service: svc}
}

// List godoc
// @Summary List court terms
// @Tags Terms
// @Produce json
// @Param search query string false "Term number or name"
// @Param active_on query string false "Terms covering this date (YYYY-MM-DD)"
// @Param from query string false "Terms ending on or after (YYYY-MM-DD)"
// @Param to query string false "Terms starting on or before (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "start_date, term_number or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /terms [get]
func (h *CourtTermHandler) List(c *gin.Context) {
	filter := models.CourtTermFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	var err error
	if filter.ActiveOn, err = queryDate(c, "active_on"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.From, err = queryDate(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		response.Error(c, err)
		return
	}

	terms, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, pagination)
}

// Get godoc
// @Summary Get court term with assignments and personnel
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *CourtTermHandler) Get(c *gin.Context) {
	term, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Create godoc
// @Summary Create court term
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body service.CourtTermRequest true "Term payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /terms [post]
func (h *CourtTermHandler) Create(c *gin.Context) {
	var req service.CourtTermRequest
	if !bindJSON(c, &req, "invalid term payload") {
		return
	}
	term, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}

// Update godoc
// @Summary Update court term
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body service.CourtTermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [put]
func (h *CourtTermHandler) Update(c *gin.Context) {
	var req service.CourtTermRequest
	if !bindJSON(c, &req, "invalid term payload") {
		return
	}
	term, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Delete godoc
// @Summary Delete court term
// @Description Assignments and personnel are removed with the term
// @Tags Terms
// @Param id path string true "Term ID"
// @Success 204
// @Router /terms/{id} [delete]
func (h *CourtTermHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
