package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type buildingServiceStub struct {
	filter    models.BuildingFilter
	created   service.BuildingRequest
	floorReq  service.FloorRequest
	floorOf   string
	deleteErr error
}

func (s *buildingServiceStub) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, *models.Pagination, error) {
	s.filter = filter
	return []models.Building{{ID: "b-1", Name: "Main"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (s *buildingServiceStub) Get(ctx context.Context, id string) (*models.BuildingDetail, error) {
	return &models.BuildingDetail{Building: models.Building{ID: id}, Floors: []models.Floor{}}, nil
}

func (s *buildingServiceStub) Create(ctx context.Context, req service.BuildingRequest) (*models.Building, error) {
	s.created = req
	return &models.Building{ID: "b-2", Name: req.Name}, nil
}

func (s *buildingServiceStub) Update(ctx context.Context, id string, req service.BuildingRequest) (*models.Building, error) {
	return &models.Building{ID: id, Name: req.Name}, nil
}

func (s *buildingServiceStub) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

func (s *buildingServiceStub) ListFloors(ctx context.Context, buildingID string) ([]models.Floor, error) {
	return []models.Floor{}, nil
}

func (s *buildingServiceStub) CreateFloor(ctx context.Context, buildingID string, req service.FloorRequest) (*models.Floor, error) {
	s.floorOf, s.floorReq = buildingID, req
	return &models.Floor{ID: "f-1", BuildingID: buildingID, Name: req.Name}, nil
}

func (s *buildingServiceStub) UpdateFloor(ctx context.Context, id string, req service.FloorRequest) (*models.Floor, error) {
	return &models.Floor{ID: id, Name: req.Name}, nil
}

func (s *buildingServiceStub) DeleteFloor(ctx context.Context, id string) error {
	return nil
}

func TestBuildingHandlerList(t *testing.T) {
	stub := &buildingServiceStub{}
	h := NewBuildingHandler(stub)

	c, w := newGinContext(http.MethodGet, "/buildings?status=active&search=%20main%20&page=2&limit=5", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BuildingStatusActive, stub.filter.Status)
	assert.Equal(t, "main", stub.filter.Search)
	assert.Equal(t, 2, stub.filter.Page)
	assert.Equal(t, 5, stub.filter.PageSize)
	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestBuildingHandlerCreate(t *testing.T) {
	stub := &buildingServiceStub{}
	h := NewBuildingHandler(stub)

	c, w := newGinContext(http.MethodPost, "/buildings", []byte(`{"name":`))
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)

	c, w = newGinContext(http.MethodPost, "/buildings", mustJSON(t, service.BuildingRequest{Name: "Annex", Address: "80 Centre St"}))
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "80 Centre St", stub.created.Address)
}

func TestBuildingHandlerDeleteConflict(t *testing.T) {
	stub := &buildingServiceStub{deleteErr: appErrors.Clone(appErrors.ErrConflict, "building still has floors")}
	h := NewBuildingHandler(stub)

	c, w := newGinContext(http.MethodDelete, "/buildings/b-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "b-1"}}
	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "building still has floors", decode(t, w).Error.Message)
}

func TestBuildingHandlerCreateFloor(t *testing.T) {
	stub := &buildingServiceStub{}
	h := NewBuildingHandler(stub)

	c, w := newGinContext(http.MethodPost, "/buildings/b-1/floors", mustJSON(t, service.FloorRequest{Name: "Third Floor", FloorNumber: 3}))
	c.Params = gin.Params{{Key: "id", Value: "b-1"}}
	h.CreateFloor(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "b-1", stub.floorOf)
	assert.Equal(t, 3, stub.floorReq.FloorNumber)
}
