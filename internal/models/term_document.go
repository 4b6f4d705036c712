package models

import "time"

// TermDocument is an uploaded schedule document (PDF or scanned image).
type TermDocument struct {
	ID               string    `db:"id" json:"id"`
	TermID           *string   `db:"term_id" json:"term_id,omitempty"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	MimeType         string    `db:"mime_type" json:"mime_type"`
	SizeBytes        int64     `db:"size_bytes" json:"size_bytes"`
	FilePath         string    `db:"file_path" json:"-"`
	UploadedBy       string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// TermDocumentFilter narrows document listings.
type TermDocumentFilter struct {
	TermID     string
	Unattached bool
}
