package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// EntityRecord is a row from Merchants or Publishers. The upstream CRM
// export has no fixed schema, so fields are an open mapping; callers look
// values up by best-effort key priority (see the responder package).
type EntityRecord map[string]any

// String returns the record's value for key as a string, or "" when the
// key is absent or not a string value.
func (r EntityRecord) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// FirstString returns the first non-empty string value among the given
// keys, in priority order.
func (r EntityRecord) FirstString(keys ...string) string {
	for _, k := range keys {
		if v := r.String(k); v != "" {
			return v
		}
	}
	return ""
}

// KnowledgeDoc is one ingested file's extracted content. Created once per
// upload, deleted with the file, never mutated.
type KnowledgeDoc struct {
	ID            string    `json:"id"`
	FileName      string    `json:"file_name"`
	FileURL       string    `json:"file_url"`
	FileType      string    `json:"file_type"`
	ExtractedText string    `json:"extracted_text"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// Job is a queued background task (text extraction after upload).
type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}
