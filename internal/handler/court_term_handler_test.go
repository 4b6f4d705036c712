package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type courtTermServiceStub struct {
	filter    models.CourtTermFilter
	createErr error
}

func (s *courtTermServiceStub) List(ctx context.Context, filter models.CourtTermFilter) ([]models.CourtTerm, *models.Pagination, error) {
	s.filter = filter
	return []models.CourtTerm{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (s *courtTermServiceStub) Get(ctx context.Context, id string) (*models.CourtTermDetail, error) {
	return &models.CourtTermDetail{CourtTerm: models.CourtTerm{ID: id}}, nil
}

func (s *courtTermServiceStub) Create(ctx context.Context, req service.CourtTermRequest) (*models.CourtTerm, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.CourtTerm{ID: "t-1", TermNumber: req.TermNumber}, nil
}

func (s *courtTermServiceStub) Update(ctx context.Context, id string, req service.CourtTermRequest) (*models.CourtTerm, error) {
	return &models.CourtTerm{ID: id}, nil
}

func (s *courtTermServiceStub) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	return nil
}

type assignmentServiceStub struct {
	termID  string
	reorder service.ReorderRequest
}

func (s *assignmentServiceStub) ListByTerm(ctx context.Context, termID string) ([]models.TermAssignmentDetail, error) {
	s.termID = termID
	return []models.TermAssignmentDetail{}, nil
}

func (s *assignmentServiceStub) Create(ctx context.Context, termID string, req service.TermAssignmentRequest) (*models.TermAssignmentDetail, error) {
	s.termID = termID
	return &models.TermAssignmentDetail{}, nil
}

func (s *assignmentServiceStub) Update(ctx context.Context, id string, req service.TermAssignmentRequest) (*models.TermAssignmentDetail, error) {
	return &models.TermAssignmentDetail{}, nil
}

func (s *assignmentServiceStub) Delete(ctx context.Context, id string) error {
	return nil
}

func (s *assignmentServiceStub) Reorder(ctx context.Context, termID string, req service.ReorderRequest) ([]models.TermAssignmentDetail, error) {
	s.termID, s.reorder = termID, req
	return []models.TermAssignmentDetail{}, nil
}

type personnelServiceStub struct {
	created service.TermPersonnelRequest
}

func (s *personnelServiceStub) ListByTerm(ctx context.Context, termID string) ([]models.TermPersonnel, error) {
	return []models.TermPersonnel{}, nil
}

func (s *personnelServiceStub) Create(ctx context.Context, termID string, req service.TermPersonnelRequest) (*models.TermPersonnel, error) {
	s.created = req
	return &models.TermPersonnel{ID: "p-1", TermID: termID, Name: req.Name}, nil
}

func (s *personnelServiceStub) Update(ctx context.Context, id string, req service.TermPersonnelRequest) (*models.TermPersonnel, error) {
	return &models.TermPersonnel{ID: id}, nil
}

func (s *personnelServiceStub) Delete(ctx context.Context, id string) error {
	return nil
}

func TestCourtTermHandlerListParsesDates(t *testing.T) {
	stub := &courtTermServiceStub{}
	h := NewCourtTermHandler(stub)

	c, w := newGinContext(http.MethodGet, "/terms?active_on=2025-01-15&from=2025-01-01&search=IV", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.filter.ActiveOn)
	assert.True(t, stub.filter.ActiveOn.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, stub.filter.From)
	assert.Nil(t, stub.filter.To)
	assert.Equal(t, "IV", stub.filter.Search)
}

func TestCourtTermHandlerListRejectsBadDate(t *testing.T) {
	h := NewCourtTermHandler(&courtTermServiceStub{})
	c, w := newGinContext(http.MethodGet, "/terms?to=01/31/2025", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "to must be YYYY-MM-DD", decode(t, w).Error.Message)
}

func TestCourtTermHandlerCreateConflict(t *testing.T) {
	h := NewCourtTermHandler(&courtTermServiceStub{createErr: appErrors.Clone(appErrors.ErrConflict, "term number already exists")})
	body := mustJSON(t, service.CourtTermRequest{TermNumber: "IV", TermName: "Term IV", StartDate: "2025-01-06", EndDate: "2025-01-31"})
	c, w := newGinContext(http.MethodPost, "/terms", body)
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTermAssignmentHandlerReorder(t *testing.T) {
	stub := &assignmentServiceStub{}
	h := NewTermAssignmentHandler(stub)

	c, w := newGinContext(http.MethodPost, "/terms/t-1/assignments/reorder", []byte(`{"assignment_ids":["a-2","a-1"]}`))
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.Reorder(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", stub.termID)
	assert.Equal(t, []string{"a-2", "a-1"}, stub.reorder.AssignmentIDs)
}

func TestTermAssignmentHandlerCreateBadPayload(t *testing.T) {
	h := NewTermAssignmentHandler(&assignmentServiceStub{})
	c, w := newGinContext(http.MethodPost, "/terms/t-1/assignments", []byte(`{"clerk_names":"not-a-list"}`))
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTermPersonnelHandlerCreate(t *testing.T) {
	stub := &personnelServiceStub{}
	h := NewTermPersonnelHandler(stub)

	c, w := newGinContext(http.MethodPost, "/terms/t-1/personnel", []byte(`{"name":"Adam Silvera","role":"ADMINISTRATIVE_JUDGE"}`))
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Adam Silvera", stub.created.Name)
}
