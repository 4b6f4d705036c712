package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RoomType enumerates the functional category of a room.
type RoomType string

const (
	RoomTypeCourtroom      RoomType = "COURTROOM"
	RoomTypeJudgeChambers  RoomType = "JUDGE_CHAMBERS"
	RoomTypeJuryRoom       RoomType = "JURY_ROOM"
	RoomTypeConference     RoomType = "CONFERENCE_ROOM"
	RoomTypeOffice         RoomType = "OFFICE"
	RoomTypeAdministrative RoomType = "ADMINISTRATIVE_OFFICE"
	RoomTypeRobingRoom     RoomType = "ROBING_ROOM"
	RoomTypeStorage        RoomType = "STORAGE"
	RoomTypeUtility        RoomType = "UTILITY_ROOM"
)

// RoomStatus captures availability of a room.
type RoomStatus string

const (
	RoomStatusActive      RoomStatus = "ACTIVE"
	RoomStatusInactive    RoomStatus = "INACTIVE"
	RoomStatusMaintenance RoomStatus = "UNDER_MAINTENANCE"
)

// PhotoView identifies a courtroom photo slot.
type PhotoView string

const (
	PhotoViewJudge    PhotoView = "judge_view"
	PhotoViewAudience PhotoView = "audience_view"
)

// ValidRoomType reports whether the value is a known room type.
func ValidRoomType(t RoomType) bool {
	switch t {
	case RoomTypeCourtroom, RoomTypeJudgeChambers, RoomTypeJuryRoom, RoomTypeConference, RoomTypeOffice,
		RoomTypeAdministrative, RoomTypeRobingRoom, RoomTypeStorage, RoomTypeUtility:
		return true
	default:
		return false
	}
}

// ValidRoomStatus reports whether the value is a known room status.
func ValidRoomStatus(s RoomStatus) bool {
	return s == RoomStatusActive || s == RoomStatusInactive || s == RoomStatusMaintenance
}

// ValidPhotoView reports whether the value names a courtroom photo slot.
func ValidPhotoView(v PhotoView) bool {
	return v == PhotoViewJudge || v == PhotoViewAudience
}

// CourtroomPhotos stores relative storage paths for courtroom photos as JSONB.
type CourtroomPhotos struct {
	JudgeView    *string `json:"judge_view,omitempty"`
	AudienceView *string `json:"audience_view,omitempty"`
}

// Get returns the stored path for a view.
func (p CourtroomPhotos) Get(view PhotoView) *string {
	switch view {
	case PhotoViewJudge:
		return p.JudgeView
	case PhotoViewAudience:
		return p.AudienceView
	default:
		return nil
	}
}

// Set replaces the stored path for a view. A nil path clears it.
func (p *CourtroomPhotos) Set(view PhotoView, path *string) {
	switch view {
	case PhotoViewJudge:
		p.JudgeView = path
	case PhotoViewAudience:
		p.AudienceView = path
	}
}

// Empty reports whether no photo is stored.
func (p CourtroomPhotos) Empty() bool {
	return p.JudgeView == nil && p.AudienceView == nil
}

// Value marshals photos to JSON for persistence.
func (p CourtroomPhotos) Value() (driver.Value, error) {
	if p.Empty() {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal courtroom photos: %w", err)
	}
	return data, nil
}

// Scan unmarshals the JSONB column.
func (p *CourtroomPhotos) Scan(value interface{}) error {
	if value == nil {
		*p = CourtroomPhotos{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for CourtroomPhotos", value)
	}
	if len(data) == 0 {
		*p = CourtroomPhotos{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal courtroom photos: %w", err)
	}
	return nil
}

// Room is a single space in the facilities inventory.
type Room struct {
	ID              string          `db:"id" json:"id"`
	FloorID         string          `db:"floor_id" json:"floor_id"`
	RoomNumber      string          `db:"room_number" json:"room_number"`
	Name            string          `db:"name" json:"name"`
	RoomType        RoomType        `db:"room_type" json:"room_type"`
	Status          RoomStatus      `db:"status" json:"status"`
	Description     *string         `db:"description" json:"description,omitempty"`
	PhoneNumber     *string         `db:"phone_number" json:"phone_number,omitempty"`
	CurrentFunction *string         `db:"current_function" json:"current_function,omitempty"`
	IsStorage       bool            `db:"is_storage" json:"is_storage"`
	StorageCapacity *int            `db:"storage_capacity" json:"storage_capacity,omitempty"`
	StorageType     *string         `db:"storage_type" json:"storage_type,omitempty"`
	StorageNotes    *string         `db:"storage_notes" json:"storage_notes,omitempty"`
	CourtroomPhotos CourtroomPhotos `db:"courtroom_photos" json:"courtroom_photos"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// RoomDetail extends Room with its floor and building references.
type RoomDetail struct {
	Room
	FloorName    string `db:"floor_name" json:"floor_name"`
	FloorNumber  int    `db:"floor_number" json:"floor_number"`
	BuildingID   string `db:"building_id" json:"building_id"`
	BuildingName string `db:"building_name" json:"building_name"`
}

// RoomFilter defines filters supported by room listings.
type RoomFilter struct {
	BuildingID string     `json:"building_id,omitempty"`
	FloorID    string     `json:"floor_id,omitempty"`
	RoomType   RoomType   `json:"room_type,omitempty"`
	Status     RoomStatus `json:"status,omitempty"`
	IsStorage  *bool      `json:"is_storage,omitempty"`
	Search     string     `json:"search,omitempty"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	SortBy     string     `json:"sort_by,omitempty"`
	SortOrder  string     `json:"sort_order,omitempty"`
}

// RoomMatch is the outcome of resolving free-text room numbers to inventory records.
type RoomMatch struct {
	Query      string      `json:"query"`
	Normalized string      `json:"normalized"`
	Room       *RoomDetail `json:"room,omitempty"`
	Strategy   string      `json:"strategy,omitempty"`
}
