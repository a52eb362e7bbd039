// Package pagination implements newest-first keyset paging over
// (created_at, id), the ordering every list endpoint shares.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ErrInvalidCursor wraps every cursor decoding failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// Params is the raw page request taken from the query string.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the position of the last row a page served.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Window is a decoded page request.
type Window struct {
	Limit int
	After *Cursor
}

// Window validates the cursor and clamps the limit.
func (p Params) Window() (Window, error) {
	after, err := ParseCursor(p.Cursor)
	if err != nil {
		return Window{}, err
	}
	return Window{Limit: NormalizeLimit(p.Limit), After: after}, nil
}

// First is the opening window for callers that never page further.
func First(limit int) Window {
	return Window{Limit: NormalizeLimit(limit)}
}

// Scope is a gorm scope that filters past the cursor, orders newest first
// and reads one row beyond the page to detect a next page.
func (w Window) Scope(db *gorm.DB) *gorm.DB {
	if w.After != nil {
		db = db.Where("(created_at < ?) OR (created_at = ? AND id < ?)", w.After.CreatedAt, w.After.CreatedAt, w.After.ID)
	}
	db = db.Order("created_at DESC").Order("id DESC")
	if w.Limit > 0 {
		db = db.Limit(w.Limit + 1)
	}
	return db
}

// Cut trims rows read through Scope to the page and returns the cursor
// for the next one, or "" on the last page.
func Cut[T any](w Window, rows []T, position func(T) Cursor) ([]T, string) {
	if w.Limit <= 0 || len(rows) <= w.Limit {
		return rows, ""
	}
	page := rows[:w.Limit]
	return page, EncodeCursor(position(page[len(page)-1]))
}

// EncodeCursor renders a URL-safe cursor.
func EncodeCursor(c Cursor) string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor returns nil for an empty value.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	stamp, id, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrInvalidCursor)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrInvalidCursor, err)
	}
	rowID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrInvalidCursor, err)
	}
	return &Cursor{CreatedAt: createdAt, ID: rowID}, nil
}
