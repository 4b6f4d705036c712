package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

const courtTermColumns = "id, term_number, term_name, start_date, end_date, location, description, created_at, updated_at"

const (
	insertCourtTermQuery = `INSERT INTO court_terms (id, term_number, term_name, start_date, end_date, location, description, created_at, updated_at)
		VALUES (:id, :term_number, :term_name, :start_date, :end_date, :location, :description, :created_at, :updated_at)`
	insertAssignmentQuery = `INSERT INTO term_assignments (id, term_id, part_code, room_id, room_number, justice_name, clerk_names,
		sergeant_name, phone, fax, tel_extension, sort_order, created_at, updated_at)
		VALUES (:id, :term_id, :part_code, :room_id, :room_number, :justice_name, :clerk_names,
		:sergeant_name, :phone, :fax, :tel_extension, :sort_order, :created_at, :updated_at)`
	insertPersonnelQuery = `INSERT INTO term_personnel (id, term_id, name, role, phone, extension, room_number, created_at, updated_at)
		VALUES (:id, :term_id, :name, :role, :phone, :extension, :room_number, :created_at, :updated_at)`
)

// CourtTermRepository manages persistence for court terms.
type CourtTermRepository struct {
	db *sqlx.DB
}

// NewCourtTermRepository constructs a CourtTermRepository.
func NewCourtTermRepository(db *sqlx.DB) *CourtTermRepository {
	return &CourtTermRepository{db: db}
}

// List returns terms matching filters along with total count.
func (r *CourtTermRepository) List(ctx context.Context, filter models.CourtTermFilter) ([]models.CourtTerm, int, error) {
	base := "FROM court_terms WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(term_number) LIKE $%d OR LOWER(term_name) LIKE $%d OR LOWER(location) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.ActiveOn != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d AND end_date >= $%d", len(args)+1, len(args)+1))
		args = append(args, *filter.ActiveOn)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"term_number": "term_number",
		"term_name":   "term_name",
		"start_date":  "start_date",
		"end_date":    "end_date",
		"created_at":  "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", courtTermColumns, base, column, order, size, offset)
	var terms []models.CourtTerm
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list court terms: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count court terms: %w", err)
	}
	return terms, total, nil
}

// FindByID fetches a term by ID.
func (r *CourtTermRepository) FindByID(ctx context.Context, id string) (*models.CourtTerm, error) {
	query := fmt.Sprintf("SELECT %s FROM court_terms WHERE id = $1", courtTermColumns)
	var term models.CourtTerm
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		return nil, err
	}
	return &term, nil
}

// ExistsByNumber checks whether another term uses the term number.
func (r *CourtTermRepository) ExistsByNumber(ctx context.Context, termNumber, excludeID string) (bool, error) {
	query := "SELECT 1 FROM court_terms WHERE UPPER(term_number) = UPPER($1)"
	args := []interface{}{termNumber}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check term number: %w", err)
	}
	return true, nil
}

// Create inserts a term.
func (r *CourtTermRepository) Create(ctx context.Context, term *models.CourtTerm) error {
	stampTerm(term)
	if _, err := r.db.NamedExecContext(ctx, insertCourtTermQuery, term); err != nil {
		return fmt.Errorf("create court term: %w", err)
	}
	return nil
}

// Update modifies a term.
func (r *CourtTermRepository) Update(ctx context.Context, term *models.CourtTerm) error {
	term.UpdatedAt = time.Now().UTC()
	const query = `UPDATE court_terms SET term_number = :term_number, term_name = :term_name, start_date = :start_date,
		end_date = :end_date, location = :location, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, term)
	if err != nil {
		return fmt.Errorf("update court term: %w", err)
	}
	return requireAffected(res, "court term update")
}

// Delete removes a term; assignments and personnel cascade.
func (r *CourtTermRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM court_terms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete court term: %w", err)
	}
	return requireAffected(res, "court term delete")
}

// CreateWithDetails inserts a term with its assignments and personnel in one
// transaction and attaches the source document when documentID is set.
func (r *CourtTermRepository) CreateWithDetails(ctx context.Context, term *models.CourtTerm, assignments []models.TermAssignment, personnel []models.TermPersonnel, documentID *string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin term import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stampTerm(term)
	if _, err = tx.NamedExecContext(ctx, insertCourtTermQuery, term); err != nil {
		return fmt.Errorf("insert imported term: %w", err)
	}

	for i := range assignments {
		a := &assignments[i]
		a.TermID = term.ID
		stampAssignment(a, term.CreatedAt)
		if _, err = tx.NamedExecContext(ctx, insertAssignmentQuery, a); err != nil {
			return fmt.Errorf("insert imported assignment %s: %w", a.PartCode, err)
		}
	}

	for i := range personnel {
		p := &personnel[i]
		p.TermID = term.ID
		stampPersonnel(p, term.CreatedAt)
		if _, err = tx.NamedExecContext(ctx, insertPersonnelQuery, p); err != nil {
			return fmt.Errorf("insert imported personnel: %w", err)
		}
	}

	if documentID != nil {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `UPDATE term_documents SET term_id = $2 WHERE id = $1`, *documentID, term.ID)
		if err != nil {
			return fmt.Errorf("link term document: %w", err)
		}
		if err = requireAffected(res, "term document link"); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit term import: %w", err)
	}
	return nil
}

func stampTerm(term *models.CourtTerm) {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	term.CreatedAt = now
	term.UpdatedAt = now
}

func stampAssignment(a *models.TermAssignment, now time.Time) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.ClerkNames == nil {
		a.ClerkNames = []string{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
}

func stampPersonnel(p *models.TermPersonnel, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}
