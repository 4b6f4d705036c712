package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/middleware"
	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

type roomService interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.RoomDetail, error)
	Create(ctx context.Context, req service.RoomRequest) (*models.RoomDetail, error)
	Update(ctx context.Context, id string, req service.RoomRequest) (*models.RoomDetail, error)
	UpdateStatus(ctx context.Context, id string, req service.RoomStatusRequest) (*models.RoomDetail, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	MatchRoomNumber(ctx context.Context, query string) (models.RoomMatch, error)
	UploadPhoto(ctx context.Context, id string, view models.PhotoView, upload service.Upload) (*models.RoomDetail, error)
	DeletePhoto(ctx context.Context, id string, view models.PhotoView) error
	PhotoURL(ctx context.Context, id string, view models.PhotoView) (*service.SignedURL, error)
	OpenPhoto(ctx context.Context, token string) (*service.FileDownload, error)
}

// RoomHandler exposes room inventory, matching and courtroom photo endpoints.
type RoomHandler struct {
	service roomService
}

// NewRoomHandler constructs a room handler.
func NewRoomHandler(svc roomService) *RoomHandler {
	return &RoomHandler{service: svc}
}

// List godoc
// @Summary List rooms
// @Description Cached listing; meta.cache_hit and X-Cache report whether the cache served it
// @Tags Rooms
// @Produce json
// @Param building_id query string false "Building ID"
// @Param floor_id query string false "Floor ID"
// @Param room_type query string false "Room type"
// @Param status query string false "Room status"
// @Param is_storage query bool false "Storage rooms only"
// @Param search query string false "Search number or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "room_number, name, room_type, status or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	filter := models.RoomFilter{
		BuildingID: strings.TrimSpace(c.Query("building_id")),
		FloorID:    strings.TrimSpace(c.Query("floor_id")),
		RoomType:   models.RoomType(strings.ToUpper(strings.TrimSpace(c.Query("room_type")))),
		Status:     models.RoomStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Search:     strings.TrimSpace(c.Query("search")),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	if raw := c.Query("is_storage"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "is_storage must be a boolean"))
			return
		}
		filter.IsStorage = &value
	}

	rooms, pagination, hit, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, rooms, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Create godoc
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.RoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.RoomRequest
	if !bindJSON(c, &req, "invalid room payload") {
		return
	}
	room, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.RoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.RoomRequest
	if !bindJSON(c, &req, "invalid room payload") {
		return
	}
	room, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// UpdateStatus godoc
// @Summary Change room status
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.RoomStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/status [patch]
func (h *RoomHandler) UpdateStatus(c *gin.Context) {
	var req service.RoomStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	room, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Delete godoc
// @Summary Delete room
// @Tags Rooms
// @Param id path string true "Room ID"
// @Success 204
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Match godoc
// @Summary Resolve free-text room number
// @Tags Rooms
// @Produce json
// @Param q query string true "Room text, e.g. Rm. 1234"
// @Success 200 {object} response.Envelope
// @Router /rooms/match [get]
func (h *RoomHandler) Match(c *gin.Context) {
	match, err := h.service.MatchRoomNumber(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, match, nil)
}

// UploadPhoto godoc
// @Summary Upload courtroom photo
// @Tags Rooms
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room ID"
// @Param view path string true "judge_view or audience_view"
// @Param file formData file true "Photo"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /rooms/{id}/photos/{view} [post]
func (h *RoomHandler) UploadPhoto(c *gin.Context) {
	upload, closeFile, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	room, err := h.service.UploadPhoto(c.Request.Context(), c.Param("id"), models.PhotoView(c.Param("view")), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// PhotoURL godoc
// @Summary Signed link to a courtroom photo
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param view path string true "judge_view or audience_view"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/photos/{view} [get]
func (h *RoomHandler) PhotoURL(c *gin.Context) {
	signed, err := h.service.PhotoURL(c.Request.Context(), c.Param("id"), models.PhotoView(c.Param("view")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signed, nil)
}

// DeletePhoto godoc
// @Summary Remove courtroom photo
// @Tags Rooms
// @Param id path string true "Room ID"
// @Param view path string true "judge_view or audience_view"
// @Success 204
// @Router /rooms/{id}/photos/{view} [delete]
func (h *RoomHandler) DeletePhoto(c *gin.Context) {
	if err := h.service.DeletePhoto(c.Request.Context(), c.Param("id"), models.PhotoView(c.Param("view"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ServePhoto godoc
// @Summary Stream courtroom photo via signed token
// @Tags Files
// @Produce image/jpeg
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/photos/{token} [get]
func (h *RoomHandler) ServePhoto(c *gin.Context) {
	result, err := h.service.OpenPhoto(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamDownload(c, result, "inline")
}
