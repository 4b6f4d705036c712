package models

import (
	"time"

	"github.com/lib/pq"
)

// TermAssignment links a court part to a justice and a room for a term.
type TermAssignment struct {
	ID           string         `db:"id" json:"id"`
	TermID       string         `db:"term_id" json:"term_id"`
	PartCode     string         `db:"part_code" json:"part_code"`
	RoomID       *string        `db:"room_id" json:"room_id,omitempty"`
	RoomNumber   string         `db:"room_number" json:"room_number"`
	JusticeName  string         `db:"justice_name" json:"justice_name"`
	ClerkNames   pq.StringArray `db:"clerk_names" json:"clerk_names"`
	SergeantName *string        `db:"sergeant_name" json:"sergeant_name,omitempty"`
	Phone        *string        `db:"phone" json:"phone,omitempty"`
	Fax          *string        `db:"fax" json:"fax,omitempty"`
	TelExtension *string        `db:"tel_extension" json:"tel_extension,omitempty"`
	SortOrder    int            `db:"sort_order" json:"sort_order"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// TermAssignmentDetail adds the resolved room's display fields.
type TermAssignmentDetail struct {
	TermAssignment
	RoomName     *string `db:"room_name" json:"room_name,omitempty"`
	FloorName    *string `db:"floor_name" json:"floor_name,omitempty"`
	BuildingName *string `db:"building_name" json:"building_name,omitempty"`
}
