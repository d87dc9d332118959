package drive

import (
	"encoding/base64"
	"encoding/json"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// Cursor tracks Drive sync state using the Changes API. It is serialised
// into the opaque cursor string the state store persists; a cursor that
// fails to decode is treated as expired so the caller falls back to a full
// reconciliation instead of erroring out.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`
	// StartPageToken is the token from changes.getStartPageToken().
	// Used as the starting point for changes.list() in incremental sync.
	StartPageToken string `json:"start_page_token"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{
		Version: CursorVersion,
	}
}

// Encode serialises the cursor to a base64 string for storage.
func (c *Cursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor deserialises a cursor from a base64 string. Malformed or
// future-versioned cursors return domain.ErrDeltaExpired.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return NewCursor(), nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.ErrDeltaExpired
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, domain.ErrDeltaExpired
	}

	if cursor.Version > CursorVersion {
		return nil, domain.ErrDeltaExpired
	}

	return &cursor, nil
}

// IsEmpty returns true if the cursor has no sync state.
func (c *Cursor) IsEmpty() bool {
	return c.StartPageToken == ""
}
