package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type termPersonnelService interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TermPersonnel, error)
	Create(ctx context.Context, termID string, req service.TermPersonnelRequest) (*models.TermPersonnel, error)
	Update(ctx context.Context, id string, req service.TermPersonnelRequest) (*models.TermPersonnel, error)
	Delete(ctx context.Context, id string) error
}

// TermPersonnelHandler exposes the key personnel of a term.
type TermPersonnelHandler struct {
	service termPersonnelService
}

// NewTermPersonnelHandler constructs the handler.
func NewTermPersonnelHandler(svc termPersonnelService) *TermPersonnelHandler {
	return &TermPersonnelHandler{service: svc}
}

// List godoc
// @Summary List term personnel
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/personnel [get]
func (h *TermPersonnelHandler) List(c *gin.Context) {
	items, err := h.service.ListByTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add personnel to term
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body service.TermPersonnelRequest true "Personnel payload"
// @Success 201 {object} response.Envelope
// @Router /terms/{id}/personnel [post]
func (h *TermPersonnelHandler) Create(c *gin.Context) {
	var req service.TermPersonnelRequest
	if !bindJSON(c, &req, "invalid personnel payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update personnel entry
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Personnel ID"
// @Param payload body service.TermPersonnelRequest true "Personnel payload"
// @Success 200 {object} response.Envelope
// @Router /personnel/{id} [put]
func (h *TermPersonnelHandler) Update(c *gin.Context) {
	var req service.TermPersonnelRequest
	if !bindJSON(c, &req, "invalid personnel payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete personnel entry
// @Tags Terms
// @Param id path string true "Personnel ID"
// @Success 204
// @Router /personnel/{id} [delete]
func (h *TermPersonnelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
