package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/dto"
	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/repository"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/jobs"
	"github.com/noah-isme/court-facilities-api/pkg/storage"
)

type termDetailStub struct {
	detail *models.CourtTermDetail
}

func (s termDetailStub) Get(ctx context.Context, id string) (*models.CourtTermDetail, error) {
	if s.detail == nil || s.detail.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "court term not found")
	}
	return s.detail, nil
}

func (s termDetailStub) FindByID(ctx context.Context, id string) (*models.CourtTerm, error) {
	if s.detail == nil || s.detail.ID != id {
		return nil, sql.ErrNoRows
	}
	return &s.detail.CourtTerm, nil
}

func sampleTerm() *models.CourtTermDetail {
	floor := "Floor 3"
	return &models.CourtTermDetail{
		CourtTerm: models.CourtTerm{
			ID:         "term-1",
			TermNumber: "IV",
			TermName:   "Civil Term",
			StartDate:  time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
			Location:   "60 Centre Street",
		},
		Assignments: []models.TermAssignmentDetail{
			{
				TermAssignment: models.TermAssignment{PartCode: "1", JusticeName: "Hon. A. Smith", RoomNumber: "300", ClerkNames: []string{"J. Doe", "R. Roe"}, TelExtension: strPtr("4410")},
				FloorName:      &floor,
			},
		},
	}
}

func TestScheduleDataset(t *testing.T) {
	ds := ScheduleDataset(sampleTerm())
	assert.Equal(t, "Term IV: Civil Term", ds.Title)
	assert.Equal(t, "March 3, 2025 to March 28, 2025 | 60 Centre Street", ds.Subtitle)
	assert.Equal(t, []string{"Part", "Justice", "Room", "Floor", "Phone", "Fax", "Extension", "Sergeant", "Clerks"}, ds.Headers)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "J. Doe, R. Roe", ds.Rows[0]["Clerks"])
	assert.Equal(t, "Floor 3", ds.Rows[0]["Floor"])
	assert.Equal(t, "", ds.Rows[0]["Sergeant"])
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage, *storage.SignedURLSigner) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(termDetailStub{detail: sampleTerm()}, store, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, nil)
	return svc, store, signer
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), &models.ExportJob{ID: "job-1", TermID: "term-1", Format: models.ExportFormatCSV})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.RelativePath, "terms/term-1/term_iv_"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))
	assert.Contains(t, result.URL, "/api/v1/files/exports/")

	path, err := store.Path(result.RelativePath)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Part,Justice,Room,Floor,Phone,Fax,Extension,Sergeant,Clerks"))
	assert.Contains(t, string(raw), `"J. Doe, R. Roe"`)
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), &models.ExportJob{ID: "job-2", TermID: "term-1", Format: models.ExportFormatPDF})
	require.NoError(t, err)

	path, err := store.Path(result.RelativePath)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))
}

func TestExportServiceGenerateErrors(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)
	_, err := svc.Generate(context.Background(), &models.ExportJob{ID: "job-3", TermID: "term-1", Format: "xlsx"})
	require.Error(t, err)
	_, err = svc.Generate(context.Background(), &models.ExportJob{ID: "job-4", TermID: "missing", Format: models.ExportFormatCSV})
	require.Error(t, err)
}

type exportJobRepoStub struct {
	mu   sync.Mutex
	jobs map[string]*models.ExportJob
}

func newExportJobRepoStub() *exportJobRepoStub {
	return &exportJobRepoStub{jobs: make(map[string]*models.ExportJob)}
}

func (r *exportJobRepoStub) Create(ctx context.Context, job *models.ExportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = fmt.Sprintf("job-%d", len(r.jobs)+1)
	job.CreatedAt = time.Now()
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *exportJobRepoStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (r *exportJobRepoStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *exportJobRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *exportJobRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type dispatcherStub struct {
	enqueued []jobs.Job
	err      error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.enqueued = append(d.enqueued, job)
	return nil
}

func newScheduleExportForTest(t *testing.T) (*ScheduleExportService, *exportJobRepoStub, *dispatcherStub, *storage.LocalStorage) {
	t.Helper()
	exporter, store, signer := newExportServiceForTest(t)
	repo := newExportJobRepoStub()
	queue := &dispatcherStub{}
	svc := NewScheduleExportService(repo, termDetailStub{detail: sampleTerm()}, queue, exporter, store, signer, NewMetricsService(), nil,
		ScheduleExportConfig{ResultTTL: time.Hour})
	return svc, repo, queue, store
}

func TestScheduleExportLifecycle(t *testing.T) {
	svc, repo, queue, _ := newScheduleExportForTest(t)
	ctx := context.Background()

	resp, err := svc.CreateExport(ctx, "term-1", dto.ExportRequest{Format: "PDF"}, actor())
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	assert.Equal(t, models.ExportFormatPDF, resp.Format)
	require.Len(t, queue.enqueued, 1)

	status, err := svc.GetStatus(ctx, resp.ID)
	require.NoError(t, err)
	assert.Nil(t, status.ResultURL)

	require.NoError(t, svc.Handle(ctx, queue.enqueued[0]))

	status, err = svc.GetStatus(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)
	assert.Nil(t, status.Error)
	require.NotNil(t, repo.jobs[resp.ID].FinishedAt)

	token := (*status.ResultURL)[strings.LastIndex(*status.ResultURL, "/")+1:]
	download, err := svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "application/pdf", download.MimeType)
	head := make([]byte, 4)
	_, err = io.ReadFull(download.File, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestScheduleExportCreateRejections(t *testing.T) {
	svc, repo, queue, _ := newScheduleExportForTest(t)
	ctx := context.Background()

	_, err := svc.CreateExport(ctx, "term-1", dto.ExportRequest{Format: "docx"}, actor())
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateExport(ctx, "term-missing", dto.ExportRequest{Format: "csv"}, actor())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	queue.err = errors.New("queue full")
	_, err = svc.CreateExport(ctx, "term-1", dto.ExportRequest{Format: "csv"}, actor())
	require.Error(t, err)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
	}
}

func TestScheduleExportRetryThenExhausted(t *testing.T) {
	svc, repo, _, _ := newScheduleExportForTest(t)
	ctx := context.Background()
	job := &models.ExportJob{TermID: "term-gone", Format: models.ExportFormatCSV, Status: models.ExportStatusQueued, CreatedBy: "user-1"}
	require.NoError(t, repo.Create(ctx, job))

	err := svc.Handle(ctx, jobs.Job{ID: job.ID, Type: exportJobType})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, repo.jobs[job.ID].Status)
	require.NotNil(t, repo.jobs[job.ID].ErrorMessage)

	svc.OnExhausted(ctx, jobs.Job{ID: job.ID}, err)
	status, err := svc.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, status.Status)
	require.NotNil(t, status.Error)
}

func TestScheduleExportDownloadRequiresFinishedJob(t *testing.T) {
	svc, repo, queue, _ := newScheduleExportForTest(t)
	ctx := context.Background()
	resp, err := svc.CreateExport(ctx, "term-1", dto.ExportRequest{Format: "csv"}, actor())
	require.NoError(t, err)
	require.NoError(t, svc.Handle(ctx, queue.enqueued[0]))
	url := *repo.jobs[resp.ID].ResultURL
	token := url[strings.LastIndex(url, "/")+1:]

	processing := models.ExportStatusProcessing
	require.NoError(t, repo.Update(ctx, resp.ID, repository.UpdateExportJobParams{Status: &processing}))
	_, err = svc.ResolveDownload(ctx, token)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.ResolveDownload(ctx, "garbage")
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestScheduleExportRecoverAndCleanup(t *testing.T) {
	svc, repo, queue, _ := newScheduleExportForTest(t)
	ctx := context.Background()
	resp, err := svc.CreateExport(ctx, "term-1", dto.ExportRequest{Format: "csv"}, actor())
	require.NoError(t, err)
	queue.enqueued = nil

	assert.Equal(t, 1, svc.RecoverPendingJobs(ctx))
	require.Len(t, queue.enqueued, 1)
	require.NoError(t, svc.Handle(ctx, queue.enqueued[0]))

	url := *repo.jobs[resp.ID].ResultURL
	token := url[strings.LastIndex(url, "/")+1:]
	download, err := svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	path := download.File.Name()
	download.File.Close()

	old := time.Now().Add(-2 * time.Hour)
	repo.jobs[resp.ID].FinishedAt = &old
	svc.CleanupExpired(ctx)
	assert.NoFileExists(t, path)
}
