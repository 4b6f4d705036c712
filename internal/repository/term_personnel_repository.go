package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

const personnelColumns = "id, term_id, name, role, phone, extension, room_number, created_at, updated_at"

// TermPersonnelRepository manages persistence for term personnel.
type TermPersonnelRepository struct {
	db *sqlx.DB
}

// NewTermPersonnelRepository constructs a TermPersonnelRepository.
func NewTermPersonnelRepository(db *sqlx.DB) *TermPersonnelRepository {
	return &TermPersonnelRepository{db: db}
}

// ListByTerm returns personnel grouped by role then name.
func (r *TermPersonnelRepository) ListByTerm(ctx context.Context, termID string) ([]models.TermPersonnel, error) {
	query := fmt.Sprintf("SELECT %s FROM term_personnel WHERE term_id = $1 ORDER BY role ASC, name ASC", personnelColumns)
	var items []models.TermPersonnel
	if err := r.db.SelectContext(ctx, &items, query, termID); err != nil {
		return nil, fmt.Errorf("list term personnel: %w", err)
	}
	return items, nil
}

// FindByID fetches one personnel row.
func (r *TermPersonnelRepository) FindByID(ctx context.Context, id string) (*models.TermPersonnel, error) {
	query := fmt.Sprintf("SELECT %s FROM term_personnel WHERE id = $1", personnelColumns)
	var item models.TermPersonnel
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a personnel row.
func (r *TermPersonnelRepository) Create(ctx context.Context, p *models.TermPersonnel) error {
	stampPersonnel(p, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertPersonnelQuery, p); err != nil {
		return fmt.Errorf("create term personnel: %w", err)
	}
	return nil
}

// Update modifies a personnel row.
func (r *TermPersonnelRepository) Update(ctx context.Context, p *models.TermPersonnel) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE term_personnel SET name = :name, role = :role, phone = :phone, extension = :extension,
		room_number = :room_number, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update term personnel: %w", err)
	}
	return requireAffected(res, "term personnel update")
}

// Delete removes a personnel row.
func (r *TermPersonnelRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM term_personnel WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete term personnel: %w", err)
	}
	return requireAffected(res, "term personnel delete")
}
