package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

const assignmentDetailSelect = `SELECT a.id, a.term_id, a.part_code, a.room_id, a.room_number, a.justice_name, a.clerk_names,
       a.sergeant_name, a.phone, a.fax, a.tel_extension, a.sort_order, a.created_at, a.updated_at,
       r.name AS room_name, f.name AS floor_name, b.name AS building_name
FROM term_assignments a
LEFT JOIN rooms r ON r.id = a.room_id
LEFT JOIN floors f ON f.id = r.floor_id
LEFT JOIN buildings b ON b.id = f.building_id`

// TermAssignmentRepository manages persistence for term assignments.
type TermAssignmentRepository struct {
	db *sqlx.DB
}

// NewTermAssignmentRepository constructs a TermAssignmentRepository.
func NewTermAssignmentRepository(db *sqlx.DB) *TermAssignmentRepository {
	return &TermAssignmentRepository{db: db}
}

// ListByTerm returns a term's assignments in display order.
func (r *TermAssignmentRepository) ListByTerm(ctx context.Context, termID string) ([]models.TermAssignmentDetail, error) {
	var items []models.TermAssignmentDetail
	query := assignmentDetailSelect + " WHERE a.term_id = $1 ORDER BY a.sort_order ASC, a.part_code ASC"
	if err := r.db.SelectContext(ctx, &items, query, termID); err != nil {
		return nil, fmt.Errorf("list term assignments: %w", err)
	}
	return items, nil
}

// FindByID fetches an assignment.
func (r *TermAssignmentRepository) FindByID(ctx context.Context, id string) (*models.TermAssignmentDetail, error) {
	var item models.TermAssignmentDetail
	if err := r.db.GetContext(ctx, &item, assignmentDetailSelect+" WHERE a.id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ExistsByPart checks whether the term already has an assignment for the part.
func (r *TermAssignmentRepository) ExistsByPart(ctx context.Context, termID, partCode, excludeID string) (bool, error) {
	query := "SELECT 1 FROM term_assignments WHERE term_id = $1 AND UPPER(part_code) = UPPER($2)"
	args := []interface{}{termID, partCode}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment part: %w", err)
	}
	return true, nil
}

// NextSortOrder returns the sort order that appends to the end of a term's list.
func (r *TermAssignmentRepository) NextSortOrder(ctx context.Context, termID string) (int, error) {
	var next int
	if err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM term_assignments WHERE term_id = $1`, termID); err != nil {
		return 0, fmt.Errorf("next assignment sort order: %w", err)
	}
	return next, nil
}

// Create inserts an assignment.
func (r *TermAssignmentRepository) Create(ctx context.Context, a *models.TermAssignment) error {
	stampAssignment(a, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertAssignmentQuery, a); err != nil {
		return fmt.Errorf("create term assignment: %w", err)
	}
	return nil
}

// Update modifies an assignment.
func (r *TermAssignmentRepository) Update(ctx context.Context, a *models.TermAssignment) error {
	a.UpdatedAt = time.Now().UTC()
	if a.ClerkNames == nil {
		a.ClerkNames = []string{}
	}
	const query = `UPDATE term_assignments SET part_code = :part_code, room_id = :room_id, room_number = :room_number,
		justice_name = :justice_name, clerk_names = :clerk_names, sergeant_name = :sergeant_name, phone = :phone,
		fax = :fax, tel_extension = :tel_extension, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("update term assignment: %w", err)
	}
	return requireAffected(res, "term assignment update")
}

// Delete removes an assignment.
func (r *TermAssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM term_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete term assignment: %w", err)
	}
	return requireAffected(res, "term assignment delete")
}

// Reorder rewrites sort_order so that ids appear in the given order.
func (r *TermAssignmentRepository) Reorder(ctx context.Context, termID string, ids []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder assignments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i, id := range ids {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `UPDATE term_assignments SET sort_order = $3, updated_at = $4 WHERE id = $1 AND term_id = $2`, id, termID, i, now)
		if err != nil {
			return fmt.Errorf("reorder assignment %s: %w", id, err)
		}
		if err = requireAffected(res, "assignment reorder"); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder assignments: %w", err)
	}
	return nil
}
