package domain

import (
	"encoding/json"
	"time"
)

// Content is a rich-text document. Blocks are stored as opaque JSON produced
// by the editor.
type Content struct {
	ID        string
	Title     string
	Blocks    json.RawMessage
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContentPatch holds the optional fields of a content update.
type ContentPatch struct {
	Title  *string
	Blocks json.RawMessage // nil means unchanged
}
