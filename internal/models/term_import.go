package models

// ImportMode selects the extraction strategy for term text.
type ImportMode string

const (
	ImportModeAuto  ImportMode = "auto"
	ImportModeList  ImportMode = "list"
	ImportModeTable ImportMode = "table"
)

// ImportTerm is the term header extracted from a document.
type ImportTerm struct {
	TermNumber  string `json:"term_number"`
	TermName    string `json:"term_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

// ImportAssignment is one extracted part/justice/room row.
type ImportAssignment struct {
	PartCode     string   `json:"part_code"`
	JusticeName  string   `json:"justice_name"`
	RoomNumber   string   `json:"room_number"`
	RoomID       *string  `json:"room_id,omitempty"`
	ClerkNames   []string `json:"clerk_names"`
	SergeantName string   `json:"sergeant_name,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Fax          string   `json:"fax,omitempty"`
	TelExtension string   `json:"tel_extension,omitempty"`
}

// ImportPersonnel is one extracted role-holder.
type ImportPersonnel struct {
	Name       string        `json:"name"`
	Role       PersonnelRole `json:"role"`
	Phone      string        `json:"phone,omitempty"`
	Extension  string        `json:"extension,omitempty"`
	RoomNumber string        `json:"room_number,omitempty"`
}

// TermImportData is the transient bundle produced by text extraction. It is always
// reviewed by a person before it is committed.
type TermImportData struct {
	Term             ImportTerm         `json:"term"`
	Assignments      []ImportAssignment `json:"assignments"`
	Personnel        []ImportPersonnel  `json:"personnel"`
	Warnings         []string           `json:"warnings"`
	Mode             ImportMode         `json:"mode"`
	Confidence       float64            `json:"confidence"`
	NeedsReview      bool               `json:"needs_review"`
	Placeholder      bool               `json:"placeholder"`
	SourceDocumentID *string            `json:"source_document_id,omitempty"`
}
