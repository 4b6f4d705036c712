package models

import "time"

// BuildingStatus marks whether a building is in service.
type BuildingStatus string

const (
	BuildingStatusActive   BuildingStatus = "ACTIVE"
	BuildingStatusInactive BuildingStatus = "INACTIVE"
)

// Building represents a courthouse or annex.
type Building struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Address   string         `db:"address" json:"address"`
	Status    BuildingStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// BuildingDetail includes the floors of a building.
type BuildingDetail struct {
	Building
	Floors []Floor `json:"floors"`
}

// Floor is a level inside a building.
type Floor struct {
	ID          string    `db:"id" json:"id"`
	BuildingID  string    `db:"building_id" json:"building_id"`
	Name        string    `db:"name" json:"name"`
	FloorNumber int       `db:"floor_number" json:"floor_number"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BuildingFilter defines list filters for buildings.
type BuildingFilter struct {
	Status   BuildingStatus
	Search   string
	Page     int
	PageSize int
}
