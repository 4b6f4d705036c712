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

const buildingColumns = "id, name, address, status, created_at, updated_at"
const floorColumns = "id, building_id, name, floor_number, created_at, updated_at"

// BuildingRepository manages persistence for buildings and their floors.
type BuildingRepository struct {
	db *sqlx.DB
}

// NewBuildingRepository constructs a BuildingRepository.
func NewBuildingRepository(db *sqlx.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

// List returns buildings matching filters along with total count.
func (r *BuildingRepository) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, int, error) {
	base := "FROM buildings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(address) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", buildingColumns, base, size, offset)
	var buildings []models.Building
	if err := r.db.SelectContext(ctx, &buildings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list buildings: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count buildings: %w", err)
	}
	return buildings, total, nil
}

// FindByID fetches a building by ID.
func (r *BuildingRepository) FindByID(ctx context.Context, id string) (*models.Building, error) {
	query := fmt.Sprintf("SELECT %s FROM buildings WHERE id = $1", buildingColumns)
	var building models.Building
	if err := r.db.GetContext(ctx, &building, query, id); err != nil {
		return nil, err
	}
	return &building, nil
}

// ExistsByName checks whether another building already uses the name.
func (r *BuildingRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM buildings WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check building name: %w", err)
	}
	return true, nil
}

// Create inserts a building.
func (r *BuildingRepository) Create(ctx context.Context, building *models.Building) error {
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	building.CreatedAt = now
	building.UpdatedAt = now

	const query = `INSERT INTO buildings (id, name, address, status, created_at, updated_at)
		VALUES (:id, :name, :address, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, building); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// Update modifies a building.
func (r *BuildingRepository) Update(ctx context.Context, building *models.Building) error {
	building.UpdatedAt = time.Now().UTC()
	const query = `UPDATE buildings SET name = :name, address = :address, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, building)
	if err != nil {
		return fmt.Errorf("update building: %w", err)
	}
	return requireAffected(res, "building update")
}

// Delete removes a building.
func (r *BuildingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete building: %w", err)
	}
	return requireAffected(res, "building delete")
}

// CountFloors returns how many floors a building has.
func (r *BuildingRepository) CountFloors(ctx context.Context, buildingID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM floors WHERE building_id = $1`, buildingID); err != nil {
		return 0, fmt.Errorf("count floors: %w", err)
	}
	return total, nil
}

// ListFloors returns the floors of a building ordered by floor number.
func (r *BuildingRepository) ListFloors(ctx context.Context, buildingID string) ([]models.Floor, error) {
	query := fmt.Sprintf("SELECT %s FROM floors WHERE building_id = $1 ORDER BY floor_number ASC", floorColumns)
	var floors []models.Floor
	if err := r.db.SelectContext(ctx, &floors, query, buildingID); err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}
	return floors, nil
}

// FindFloorByID fetches a floor by ID.
func (r *BuildingRepository) FindFloorByID(ctx context.Context, id string) (*models.Floor, error) {
	query := fmt.Sprintf("SELECT %s FROM floors WHERE id = $1", floorColumns)
	var floor models.Floor
	if err := r.db.GetContext(ctx, &floor, query, id); err != nil {
		return nil, err
	}
	return &floor, nil
}

// FloorNumberExists checks whether the building already has a floor with the number.
func (r *BuildingRepository) FloorNumberExists(ctx context.Context, buildingID string, number int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM floors WHERE building_id = $1 AND floor_number = $2"
	args := []interface{}{buildingID, number}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check floor number: %w", err)
	}
	return true, nil
}

// CreateFloor inserts a floor.
func (r *BuildingRepository) CreateFloor(ctx context.Context, floor *models.Floor) error {
	if floor.ID == "" {
		floor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	floor.CreatedAt = now
	floor.UpdatedAt = now

	const query = `INSERT INTO floors (id, building_id, name, floor_number, created_at, updated_at)
		VALUES (:id, :building_id, :name, :floor_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, floor); err != nil {
		return fmt.Errorf("create floor: %w", err)
	}
	return nil
}

// UpdateFloor modifies a floor.
func (r *BuildingRepository) UpdateFloor(ctx context.Context, floor *models.Floor) error {
	floor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE floors SET name = :name, floor_number = :floor_number, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, floor)
	if err != nil {
		return fmt.Errorf("update floor: %w", err)
	}
	return requireAffected(res, "floor update")
}

// DeleteFloor removes a floor.
func (r *BuildingRepository) DeleteFloor(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM floors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete floor: %w", err)
	}
	return requireAffected(res, "floor delete")
}

// CountRoomsOnFloor returns how many rooms reference a floor.
func (r *BuildingRepository) CountRoomsOnFloor(ctx context.Context, floorID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM rooms WHERE floor_id = $1`, floorID); err != nil {
		return 0, fmt.Errorf("count rooms on floor: %w", err)
	}
	return total, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
