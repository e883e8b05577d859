package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Visibility is the access tier of a stored file.
type Visibility string

const (
	VisibilityPrivate    Visibility = "PRIVATE"
	VisibilityDepartment Visibility = "DEPARTMENT"
	VisibilityPublic     Visibility = "PUBLIC"
)

// Valid reports whether v is one of the three known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityDepartment, VisibilityPublic:
		return true
	}
	return false
}

// Metadata is the extracted-metadata map stored as JSONB. It is nil until
// the extraction pipeline completes (success or recorded failure); readers
// must tolerate its absence.
type Metadata map[string]any

// Value implements driver.Valuer so Metadata can be written to a JSONB column.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading a JSONB column.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
	return json.Unmarshal(b, m)
}

// File is a catalog record for a stored document. Department is copied from
// the owner at upload time and never tracks later department changes.
// Visibility is immutable after creation. BlobKey is unique and never reused,
// even after deletion.
type File struct {
	ID            int64      `json:"id"`
	StoredName    string     `json:"stored_name"`
	OriginalName  string     `json:"original_name"`
	Size          int64      `json:"size"`
	ContentType   string     `json:"content_type"`
	Visibility    Visibility `json:"visibility"`
	BlobKey       string     `json:"-"`
	OwnerID       int64      `json:"owner_id"`
	Department    string     `json:"department"`
	DownloadCount int64      `json:"download_count"`
	Metadata      Metadata   `json:"metadata,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
