package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type termAssignmentService interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TermAssignmentDetail, error)
	Create(ctx context.Context, termID string, req service.TermAssignmentRequest) (*models.TermAssignmentDetail, error)
	Update(ctx context.Context, id string, req service.TermAssignmentRequest) (*models.TermAssignmentDetail, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, termID string, req service.ReorderRequest) ([]models.TermAssignmentDetail, error)
}

// TermAssignmentHandler exposes the part assignment rows of a term.
type TermAssignmentHandler struct {
	service termAssignmentService
}

// NewTermAssignmentHandler constructs the handler.
func NewTermAssignmentHandler(svc termAssignmentService) *TermAssignmentHandler {
	return &TermAssignmentHandler{service: svc}
}

// List godoc
// @Summary List term assignments in display order
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/assignments [get]
func (h *TermAssignmentHandler) List(c *gin.Context) {
	items, err := h.service.ListByTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add assignment to term
// @Description room_id wins over room_number; free-text numbers are matched against the inventory
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body service.TermAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /terms/{id}/assignments [post]
func (h *TermAssignmentHandler) Create(c *gin.Context) {
	var req service.TermAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
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
// @Summary Update assignment
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.TermAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *TermAssignmentHandler) Update(c *gin.Context) {
	var req service.TermAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
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
// @Summary Delete assignment
// @Tags Terms
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *TermAssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Reorder assignments
// @Description The payload must list every assignment of the term exactly once
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body service.ReorderRequest true "Ordered assignment ids"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/assignments/reorder [post]
func (h *TermAssignmentHandler) Reorder(c *gin.Context) {
	var req service.ReorderRequest
	if !bindJSON(c, &req, "invalid reorder payload") {
		return
	}
	items, err := h.service.Reorder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
