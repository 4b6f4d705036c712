package service

import (
	"context"
	"database/sql"
	"errors"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/dto"
	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/repository"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/jobs"
)

const exportJobType = "schedule_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ScheduleExportConfig governs queue recovery and cleanup.
type ScheduleExportConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ScheduleExportService manages the lifecycle of schedule export jobs.
type ScheduleExportService struct {
	repo     exportJobStore
	terms    termFinder
	queue    jobDispatcher
	exporter *ExportService
	files    fileStorage
	signer   urlSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ScheduleExportConfig
}

// NewScheduleExportService constructs the service. files and signer must be
// the same storage and signer the ExportService writes with.
func NewScheduleExportService(repo exportJobStore, terms termFinder, queue jobDispatcher, exporter *ExportService, files fileStorage, signer urlSigner, metrics *MetricsService, logger *zap.Logger, cfg ScheduleExportConfig) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ScheduleExportService{
		repo:     repo,
		terms:    terms,
		queue:    queue,
		exporter: exporter,
		files:    files,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateExport persists a queued job and hands it to the worker queue.
func (s *ScheduleExportService) CreateExport(ctx context.Context, termID string, req dto.ExportRequest, actor *models.JWTClaims) (*dto.ExportJobResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	format := models.ExportFormat(strings.ToLower(string(req.Format)))
	if !s.exporter.Supports(format) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "court term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load court term")
	}

	job := &models.ExportJob{TermID: termID, Format: format, Status: models.ExportStatusQueued, CreatedBy: actor.UserID}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Format: job.Format}, nil
}

// GetStatus exposes job state and, once finished, the download URL.
func (s *ScheduleExportService) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	resp := &dto.ExportStatusResponse{
		ID:         job.ID,
		TermID:     job.TermID,
		Format:     job.Format,
		Status:     job.Status,
		ResultURL:  job.ResultURL,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates a token and opens the export file.
func (s *ScheduleExportService) ResolveDownload(ctx context.Context, token string) (*FileDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export is not ready")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file")
	}
	return &FileDownload{File: file, Filename: path.Base(relPath), MimeType: s.exporter.ContentType(job.Format), SizeBytes: info.Size()}, nil
}

// Handle is the queue handler. A failed attempt leaves the job QUEUED so the
// queue can retry it; OnExhausted marks it FAILED.
func (s *ScheduleExportService) Handle(ctx context.Context, job jobs.Job) error {
	record, err := s.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return err
	}

	result, err := s.exporter.Generate(ctx, record)
	if err != nil {
		queued := models.ExportStatusQueued
		msg := err.Error()
		if updateErr := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &queued, ErrorMessage: &msg}); updateErr != nil {
			s.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ExportStatusFinished
	now := time.Now().UTC()
	noError := ""
	if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		ResultURL:    &result.URL,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		return err
	}
	s.metrics.RecordExportJob(string(record.Format), string(finished))
	s.logger.Info("schedule export finished", zap.String("job_id", job.ID), zap.String("path", result.RelativePath))
	return nil
}

// OnExhausted marks a job FAILED after its last retry.
func (s *ScheduleExportService) OnExhausted(ctx context.Context, job jobs.Job, err error) {
	s.markFailed(ctx, job.ID, err.Error())
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ScheduleExportService) RecoverPendingJobs(ctx context.Context) int {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued export jobs", zap.Error(err))
		return 0
	}
	recovered := 0
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
			s.logger.Warn("failed to requeue pending export", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered
}

// RunCleanup purges expired exports every CleanupInterval until ctx ends.
func (s *ScheduleExportService) RunCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupExpired(ctx)
		}
	}
}

// CleanupExpired removes files of jobs finished before the result TTL, then
// sweeps the export directory for orphans.
func (s *ScheduleExportService) CleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Warn("export cleanup list failed", zap.Error(err))
		return
	}
	for _, job := range expired {
		if job.ResultURL == nil {
			continue
		}
		_, relPath, _, err := s.signer.Parse(path.Base(*job.ResultURL), true)
		if err != nil {
			continue
		}
		if err := s.files.Delete(relPath); err != nil {
			s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	removed, err := s.exporter.Cleanup(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export directory sweep failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
}

func (s *ScheduleExportService) markFailed(ctx context.Context, id, msg string) {
	failed := models.ExportStatusFailed
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{Status: &failed, ErrorMessage: &msg, FinishedAt: &now}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
	if job, err := s.repo.GetByID(ctx, id); err == nil {
		s.metrics.RecordExportJob(string(job.Format), string(failed))
	}
}
