package dto

import (
	"time"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

// ExportRequest captures POST /terms/{id}/exports payload.
type ExportRequest struct {
	Format models.ExportFormat `json:"format"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
	Format models.ExportFormat `json:"format"`
}

// ExportStatusResponse exposes job state and the signed download link.
type ExportStatusResponse struct {
	ID         string              `json:"id"`
	TermID     string              `json:"term_id"`
	Format     models.ExportFormat `json:"format"`
	Status     models.ExportStatus `json:"status"`
	ResultURL  *string             `json:"result_url,omitempty"`
	Error      *string             `json:"error,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}
