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

const roomDetailSelect = `SELECT r.id, r.floor_id, r.room_number, r.name, r.room_type, r.status, r.description,
       r.phone_number, r.current_function, r.is_storage, r.storage_capacity, r.storage_type, r.storage_notes,
       r.courtroom_photos, r.created_at, r.updated_at,
       f.name AS floor_name, f.floor_number, b.id AS building_id, b.name AS building_name
FROM rooms r
JOIN floors f ON f.id = r.floor_id
JOIN buildings b ON b.id = f.building_id`

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms with their floor and building names.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error) {
	where := " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BuildingID != "" {
		args = append(args, filter.BuildingID)
		conditions = append(conditions, fmt.Sprintf("b.id = $%d", len(args)))
	}
	if filter.FloorID != "" {
		args = append(args, filter.FloorID)
		conditions = append(conditions, fmt.Sprintf("r.floor_id = $%d", len(args)))
	}
	if filter.RoomType != "" {
		args = append(args, filter.RoomType)
		conditions = append(conditions, fmt.Sprintf("r.room_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if filter.IsStorage != nil {
		args = append(args, *filter.IsStorage)
		conditions = append(conditions, fmt.Sprintf("r.is_storage = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.room_number) LIKE $%d OR LOWER(r.name) LIKE $%d OR LOWER(COALESCE(r.current_function, '')) LIKE $%d)", idx, idx, idx))
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"room_number": "r.room_number",
		"name":        "r.name",
		"room_type":   "r.room_type",
		"status":      "r.status",
		"floor":       "f.floor_number",
		"created_at":  "r.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "r.room_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT %d OFFSET %d", roomDetailSelect, where, column, order, size, offset)
	var rooms []models.RoomDetail
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM rooms r JOIN floors f ON f.id = r.floor_id JOIN buildings b ON b.id = f.building_id" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// ListAll returns every room; used to build the room match index.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.RoomDetail, error) {
	var rooms []models.RoomDetail
	if err := r.db.SelectContext(ctx, &rooms, roomDetailSelect+" ORDER BY r.room_number ASC"); err != nil {
		return nil, fmt.Errorf("list all rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a room with its floor and building.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.RoomDetail, error) {
	var room models.RoomDetail
	if err := r.db.GetContext(ctx, &room, roomDetailSelect+" WHERE r.id = $1", id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByNumber checks whether the floor already has a room with the number.
func (r *RoomRepository) ExistsByNumber(ctx context.Context, floorID, roomNumber, excludeID string) (bool, error) {
	query := "SELECT 1 FROM rooms WHERE floor_id = $1 AND UPPER(room_number) = UPPER($2)"
	args := []interface{}{floorID, roomNumber}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room number: %w", err)
	}
	return true, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (id, floor_id, room_number, name, room_type, status, description, phone_number,
		current_function, is_storage, storage_capacity, storage_type, storage_notes, courtroom_photos, created_at, updated_at)
		VALUES (:id, :floor_id, :room_number, :name, :room_type, :status, :description, :phone_number,
		:current_function, :is_storage, :storage_capacity, :storage_type, :storage_notes, :courtroom_photos, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room's attributes. Photos are managed separately.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET floor_id = :floor_id, room_number = :room_number, name = :name, room_type = :room_type,
		status = :status, description = :description, phone_number = :phone_number, current_function = :current_function,
		is_storage = :is_storage, storage_capacity = :storage_capacity, storage_type = :storage_type,
		storage_notes = :storage_notes, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, room)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return requireAffected(res, "room update")
}

// UpdateStatus changes only the status column.
func (r *RoomRepository) UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	return requireAffected(res, "room status update")
}

// UpdatePhotos replaces the courtroom photo references.
func (r *RoomRepository) UpdatePhotos(ctx context.Context, id string, photos models.CourtroomPhotos) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET courtroom_photos = $2, updated_at = $3 WHERE id = $1`, id, photos, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update room photos: %w", err)
	}
	return requireAffected(res, "room photos update")
}

// Delete removes a room. Assignments keep their raw room number.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return requireAffected(res, "room delete")
}
