package models

import "time"

// PersonnelRole enumerates role-holders recorded for a term.
type PersonnelRole string

const (
	PersonnelRoleJustice             PersonnelRole = "JUSTICE"
	PersonnelRoleClerk               PersonnelRole = "CLERK"
	PersonnelRoleSergeant            PersonnelRole = "SERGEANT"
	PersonnelRoleCourtOfficer        PersonnelRole = "COURT_OFFICER"
	PersonnelRoleAdministrativeJudge PersonnelRole = "ADMINISTRATIVE_JUDGE"
	PersonnelRoleChiefClerk          PersonnelRole = "CHIEF_CLERK"
	PersonnelRoleOther               PersonnelRole = "OTHER"
)

// ValidPersonnelRole reports whether the role is known.
func ValidPersonnelRole(r PersonnelRole) bool {
	switch r {
	case PersonnelRoleJustice, PersonnelRoleClerk, PersonnelRoleSergeant, PersonnelRoleCourtOfficer,
		PersonnelRoleAdministrativeJudge, PersonnelRoleChiefClerk, PersonnelRoleOther:
		return true
	default:
		return false
	}
}

// TermPersonnel is a named role-holder associated with a term.
type TermPersonnel struct {
	ID         string        `db:"id" json:"id"`
	TermID     string        `db:"term_id" json:"term_id"`
	Name       string        `db:"name" json:"name"`
	Role       PersonnelRole `db:"role" json:"role"`
	Phone      *string       `db:"phone" json:"phone,omitempty"`
	Extension  *string       `db:"extension" json:"extension,omitempty"`
	RoomNumber *string       `db:"room_number" json:"room_number,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}
