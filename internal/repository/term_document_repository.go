package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

const termDocumentColumns = "id, term_id, original_filename, mime_type, size_bytes, file_path, uploaded_by, created_at"

// TermDocumentRepository handles uploaded document metadata.
type TermDocumentRepository struct {
	db *sqlx.DB
}

// NewTermDocumentRepository constructs the repository.
func NewTermDocumentRepository(db *sqlx.DB) *TermDocumentRepository {
	return &TermDocumentRepository{db: db}
}

// Create stores metadata for an uploaded document.
func (r *TermDocumentRepository) Create(ctx context.Context, doc *models.TermDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO term_documents (id, term_id, original_filename, mime_type, size_bytes, file_path, uploaded_by, created_at)
	VALUES (:id, :term_id, :original_filename, :mime_type, :size_bytes, :file_path, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create term document: %w", err)
	}
	return nil
}

// GetByID retrieves one document row.
func (r *TermDocumentRepository) GetByID(ctx context.Context, id string) (*models.TermDocument, error) {
	query := fmt.Sprintf("SELECT %s FROM term_documents WHERE id = $1", termDocumentColumns)
	var doc models.TermDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents newest first.
func (r *TermDocumentRepository) List(ctx context.Context, filter models.TermDocumentFilter) ([]models.TermDocument, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM term_documents", termDocumentColumns))
	args := make([]interface{}, 0, 1)
	conditions := make([]string, 0, 2)

	if filter.TermID != "" {
		args = append(args, filter.TermID)
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)))
	}
	if filter.Unattached {
		conditions = append(conditions, "term_id IS NULL")
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC LIMIT 200")

	var docs []models.TermDocument
	if err := r.db.SelectContext(ctx, &docs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list term documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document row.
func (r *TermDocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM term_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete term document: %w", err)
	}
	return requireAffected(res, "term document delete")
}
