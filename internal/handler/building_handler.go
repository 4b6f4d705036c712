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

type buildingService interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.BuildingDetail, error)
	Create(ctx context.Context, req service.BuildingRequest) (*models.Building, error)
	Update(ctx context.Context, id string, req service.BuildingRequest) (*models.Building, error)
	Delete(ctx context.Context, id string) error
	ListFloors(ctx context.Context, buildingID string) ([]models.Floor, error)
	CreateFloor(ctx context.Context, buildingID string, req service.FloorRequest) (*models.Floor, error)
	UpdateFloor(ctx context.Context, id string, req service.FloorRequest) (*models.Floor, error)
	DeleteFloor(ctx context.Context, id string) error
}

// BuildingHandler exposes building and floor endpoints.
type BuildingHandler struct {
	service buildingService
}

// NewBuildingHandler constructs a building handler.
func NewBuildingHandler(svc buildingService) *BuildingHandler {
	return &BuildingHandler{service: svc}
}

// List godoc
// @Summary List buildings
// @Tags Buildings
// @Produce json
// @Param status query string false "ACTIVE or INACTIVE"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /buildings [get]
func (h *BuildingHandler) List(c *gin.Context) {
	filter := models.BuildingFilter{
		Status: models.BuildingStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Search: strings.TrimSpace(c.Query("search")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	buildings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buildings, pagination)
}

// Get godoc
// @Summary Get building with floors
// @Tags Buildings
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Router /buildings/{id} [get]
func (h *BuildingHandler) Get(c *gin.Context) {
	building, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building, nil)
}

// Create godoc
// @Summary Create building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /buildings [post]
func (h *BuildingHandler) Create(c *gin.Context) {
	var req service.BuildingRequest
	if !bindJSON(c, &req, "invalid building payload") {
		return
	}
	building, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, building)
}

// Update godoc
// @Summary Update building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 200 {object} response.Envelope
// @Router /buildings/{id} [put]
func (h *BuildingHandler) Update(c *gin.Context) {
	var req service.BuildingRequest
	if !bindJSON(c, &req, "invalid building payload") {
		return
	}
	building, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building, nil)
}

// Delete godoc
// @Summary Delete building
// @Description Fails with 409 while floors remain
// @Tags Buildings
// @Param id path string true "Building ID"
// @Success 204
// @Router /buildings/{id} [delete]
func (h *BuildingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFloors godoc
// @Summary List floors of a building
// @Tags Buildings
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Router /buildings/{id}/floors [get]
func (h *BuildingHandler) ListFloors(c *gin.Context) {
	floors, err := h.service.ListFloors(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, floors, nil)
}

// CreateFloor godoc
// @Summary Add floor to building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param payload body service.FloorRequest true "Floor payload"
// @Success 201 {object} response.Envelope
// @Router /buildings/{id}/floors [post]
func (h *BuildingHandler) CreateFloor(c *gin.Context) {
	var req service.FloorRequest
	if !bindJSON(c, &req, "invalid floor payload") {
		return
	}
	floor, err := h.service.CreateFloor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, floor)
}

// UpdateFloor godoc
// @Summary Update floor
// @Tags Buildings
// @Accept json
// @Produce json
// @Param id path string true "Floor ID"
// @Param payload body service.FloorRequest true "Floor payload"
// @Success 200 {object} response.Envelope
// @Router /floors/{id} [put]
func (h *BuildingHandler) UpdateFloor(c *gin.Context) {
	var req service.FloorRequest
	if !bindJSON(c, &req, "invalid floor payload") {
		return
	}
	floor, err := h.service.UpdateFloor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, floor, nil)
}

// DeleteFloor godoc
// @Summary Delete floor
// @Description Fails with 409 while rooms remain
// @Tags Buildings
// @Param id path string true "Floor ID"
// @Success 204
// @Router /floors/{id} [delete]
func (h *BuildingHandler) DeleteFloor(c *gin.Context) {
	if err := h.service.DeleteFloor(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
