package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the opaque pagination state we encode/decode. BeforeUnix (in
// millis) + ID establish a stable position in a recency-descending scan.
type Cursor struct {
	BeforeUnix int64  `json:"before_unix,omitempty"`
	ID         string `json:"id,omitempty"`
}

// Before returns the cursor position as a time, or the zero time for the
// first page.
func (c Cursor) Before() time.Time {
	if c.BeforeUnix == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.BeforeUnix)
}

// From builds a cursor pointing just past the row with the given sort key.
func From(t time.Time, id string) Cursor {
	return Cursor{BeforeUnix: t.UnixMilli(), ID: id}
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}
