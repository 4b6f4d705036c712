package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/models"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type termDocumentStore interface {
	Create(ctx context.Context, doc *models.TermDocument) error
	GetByID(ctx context.Context, id string) (*models.TermDocument, error)
	List(ctx context.Context, filter models.TermDocumentFilter) ([]models.TermDocument, error)
	Delete(ctx context.Context, id string) error
}

// TermDocumentServiceConfig holds upload limits.
type TermDocumentServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// TermDocumentService stores uploaded schedule documents and signs downloads.
type TermDocumentService struct {
	repo    termDocumentStore
	storage fileStorage
	signer  urlSigner
	audit   auditLogger
	metrics *MetricsService
	logger  *zap.Logger
	cfg     TermDocumentServiceConfig
	mimeSet map[string]struct{}
	now     func() time.Time
}

// NewTermDocumentService constructs the service with defaults.
func NewTermDocumentService(repo termDocumentStore, storage fileStorage, signer urlSigner, audit auditLogger, metrics *MetricsService, logger *zap.Logger, cfg TermDocumentServiceConfig) *TermDocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/png", "image/jpeg"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &TermDocumentService{
		repo:    repo,
		storage: storage,
		signer:  signer,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		mimeSet: mimeSet(cfg.AllowedMIMEs),
		now:     time.Now,
	}
}

// Upload validates and stores a document. The content type is sniffed from the
// file itself.
func (s *TermDocumentService) Upload(ctx context.Context, upload Upload, actor *models.JWTClaims) (*models.TermDocument, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	mimeType, err := checkUpload(upload, s.cfg.MaxFileSize, s.mimeSet)
	if err != nil {
		s.metrics.RecordUpload("document", false)
		return nil, err
	}

	relPath := s.generatePath(upload.Filename, mimeType)
	size, err := s.storage.SaveStream(relPath, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	doc := &models.TermDocument{
		OriginalFilename: originalName(upload.Filename),
		MimeType:         mimeType,
		SizeBytes:        size,
		FilePath:         relPath,
		UploadedBy:       actor.UserID,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(relPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document metadata")
	}
	s.metrics.RecordUpload("document", true)
	s.emitAudit(ctx, actor, models.AuditActionDocumentUpload, doc.ID, auditPayload(map[string]interface{}{
		"filename": doc.OriginalFilename,
		"size":     doc.SizeBytes,
	}))
	return doc, nil
}

// List returns documents, optionally narrowed to one term or to unattached ones.
func (s *TermDocumentService) List(ctx context.Context, filter models.TermDocumentFilter) ([]models.TermDocument, error) {
	if filter.TermID != "" && filter.Unattached {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id and unattached are mutually exclusive")
	}
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	if docs == nil {
		docs = []models.TermDocument{}
	}
	return docs, nil
}

// Get returns document metadata.
func (s *TermDocumentService) Get(ctx context.Context, id string) (*models.TermDocument, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// Delete removes the document metadata and its file.
func (s *TermDocumentService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapMutationError(err, "document not found", "failed to delete document")
	}
	if err := s.storage.Delete(doc.FilePath); err != nil {
		s.logger.Warn("failed to remove document file", zap.String("path", doc.FilePath), zap.Error(err))
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentDelete, id, nil)
	return nil
}

// DownloadURL signs a time-limited download link.
func (s *TermDocumentService) DownloadURL(ctx context.Context, id string) (*SignedURL, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	return &SignedURL{URL: fmt.Sprintf("%s/files/documents/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token), ExpiresAt: expiresAt}, nil
}

// Open validates a signed token and opens the document file.
func (s *TermDocumentService) Open(ctx context.Context, token string) (*FileDownload, error) {
	docID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return &FileDownload{File: file, Filename: doc.OriginalFilename, MimeType: doc.MimeType, SizeBytes: doc.SizeBytes}, nil
}

// Exists reports whether a document id is known. Used by the import preview.
func (s *TermDocumentService) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *TermDocumentService) generatePath(original, mimeType string) string {
	base := slug(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if base == "" {
		base = "document"
	}
	if len(base) > 40 {
		base = base[:40]
	}
	now := s.now().UTC()
	return path.Join(now.Format("2006/01"), fmt.Sprintf("%s_%d_%s%s", base, now.Unix(), randomSuffix(), mimeExtension(mimeType)))
}

func (s *TermDocumentService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, docID string, payload []byte) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{Action: action, Resource: "term_document", ResourceID: &docID, NewValues: payload}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to create document audit", zap.Error(err))
	}
}

func originalName(raw string) string {
	name := filepath.Base(strings.ReplaceAll(raw, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}

func slug(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
