package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/pkg/export"
)

// Column headers of the schedule export, in display order.
var scheduleHeaders = []string{"Part", "Justice", "Room", "Floor", "Phone", "Fax", "Extension", "Sergeant", "Clerks"}

type exportStorage interface {
	Save(relPath string, data []byte) (string, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService renders a term's assignment table and stores the file.
type ExportService struct {
	terms     termDetailGetter
	storage   exportStorage
	renderers map[models.ExportFormat]export.Renderer
	signer    urlSigner
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(terms termDetailGetter, storage exportStorage, signer urlSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		terms:   terms,
		storage: storage,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportFormatCSV: export.NewCSVRenderer(),
			models.ExportFormatPDF: export.NewPDFRenderer(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Supports reports whether a renderer exists for the format.
func (s *ExportService) Supports(format models.ExportFormat) bool {
	_, ok := s.renderers[format]
	return ok
}

// ContentType returns the MIME type of a rendered format.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	if r, ok := s.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// Generate renders the job's term and stores the file under a signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("export job is nil")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", job.Format)
	}
	term, err := s.terms.Get(ctx, job.TermID)
	if err != nil {
		return nil, fmt.Errorf("load term %s: %w", job.TermID, err)
	}

	payload, err := renderer.Render(ScheduleDataset(term))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Format, err)
	}

	filename := fmt.Sprintf("term_%s_%s.%s", slug(term.TermNumber), s.now().UTC().Format("20060102_150405"), renderer.Extension())
	relPath, err := s.storage.Save(path.Join("terms", job.TermID, filename), payload)
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, fmt.Errorf("sign export: %w", err)
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/files/exports/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresAt:    expiresAt,
	}, nil
}

// Cleanup removes files older than ttl, defaulting to the result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// ScheduleDataset lays out a term's assignments as the export table.
func ScheduleDataset(term *models.CourtTermDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(term.Assignments))
	for _, a := range term.Assignments {
		rows = append(rows, map[string]string{
			"Part":      a.PartCode,
			"Justice":   a.JusticeName,
			"Room":      a.RoomNumber,
			"Floor":     deref(a.FloorName),
			"Phone":     deref(a.Phone),
			"Fax":       deref(a.Fax),
			"Extension": deref(a.TelExtension),
			"Sergeant":  deref(a.SergeantName),
			"Clerks":    strings.Join(a.ClerkNames, ", "),
		})
	}
	subtitle := fmt.Sprintf("%s to %s", term.StartDate.Format("January 2, 2006"), term.EndDate.Format("January 2, 2006"))
	if term.Location != "" {
		subtitle += " | " + term.Location
	}
	return export.Dataset{
		Title:    fmt.Sprintf("Term %s: %s", term.TermNumber, term.TermName),
		Subtitle: subtitle,
		Headers:  scheduleHeaders,
		Rows:     rows,
	}
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
