package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
)

type importServiceStub struct {
	parsed    service.ParseRequest
	committed models.TermImportData
}

func (s *importServiceStub) Parse(ctx context.Context, req service.ParseRequest) (*models.TermImportData, error) {
	s.parsed = req
	return &models.TermImportData{Mode: models.ImportModeList, Confidence: 0.9}, nil
}

func (s *importServiceStub) Commit(ctx context.Context, data models.TermImportData, actor *models.JWTClaims) (*models.CourtTermDetail, error) {
	s.committed = data
	return &models.CourtTermDetail{CourtTerm: models.CourtTerm{ID: "t-9", TermNumber: data.Term.TermNumber}}, nil
}

func TestTermImportHandlerParse(t *testing.T) {
	stub := &importServiceStub{}
	h := NewTermImportHandler(stub)

	c, w := newGinContext(http.MethodPost, "/term-imports/parse", []byte(`{"text":"TERM IV","mode":"list"}`))
	h.Parse(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TERM IV", stub.parsed.Text)
	assert.Equal(t, models.ImportModeList, stub.parsed.Mode)
}

func TestTermImportHandlerCommit(t *testing.T) {
	stub := &importServiceStub{}
	h := NewTermImportHandler(stub)
	body := mustJSON(t, models.TermImportData{Term: models.ImportTerm{TermNumber: "IV", TermName: "Term IV", StartDate: "2025-01-06", EndDate: "2025-01-31"}})

	c, w := newGinContext(http.MethodPost, "/term-imports/commit", body)
	h.Commit(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodPost, "/term-imports/commit", body)
	asUser(c, models.RoleAdmin)
	h.Commit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "IV", stub.committed.Term.TermNumber)
}
