package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CourtTerm models a scheduled court session period.
type CourtTerm struct {
	ID          string    `db:"id" json:"id"`
	TermNumber  string    `db:"term_number" json:"term_number"`
	TermName    string    `db:"term_name" json:"term_name"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	Location    string    `db:"location" json:"location"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourtTermDetail bundles a term with its assignments and personnel.
type CourtTermDetail struct {
	CourtTerm
	Assignments []TermAssignmentDetail `json:"assignments"`
	Personnel   []TermPersonnel        `json:"personnel"`
}

// CourtTermFilter defines filters supported by term listings.
type CourtTermFilter struct {
	Search    string
	ActiveOn  *time.Time
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
