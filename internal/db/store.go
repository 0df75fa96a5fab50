package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// safeIdentifier matches field names that may be interpolated into a JSON
// path inside SQL.
var safeIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case. Anything else is an
// error.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
	}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Filter is an equality constraint on a single top-level field.
type Filter struct {
	Field string
	Value any
}

// Order sorts results by a single top-level field. The document ID breaks
// ties in the same direction.
type Order struct {
	Field     string
	Direction Direction
}

// Query describes a collection read. The zero value reads the whole
// collection ordered by document ID.
type Query struct {
	Where      *Filter
	OrderBy    *Order
	Limit      int
	StartAfter *Cursor
}

// Snapshot is a document as read from the store.
type Snapshot struct {
	ID   string
	Data map[string]any
}

// String returns the string value of a top-level field, or "" when the
// field is absent, null, or not a string.
func (s Snapshot) String(field string) string {
	v, _ := s.Data[field].(string)
	return v
}

// CursorFor returns a cursor positioned at this snapshot for a query
// ordered by field. Pass "" for queries without an explicit order.
func (s Snapshot) CursorFor(field string) *Cursor {
	c := &Cursor{ID: s.ID}
	if field != "" {
		c.Value = s.Data[field]
	}
	return c
}

// Store is the document database surface consumed by the tracker.
// Collections are slash-separated paths; see Sub for nested collections.
type Store interface {
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// Sub returns the path of a subcollection nested under a document, e.g.
// Sub("issues", "abc", "comments") is "issues/abc/comments".
func Sub(collection, id, name string) string {
	return collection + "/" + id + "/" + name
}

// validateField rejects field names that are not plain identifiers.
func validateField(field string) error {
	if !safeIdentifier.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}
	return nil
}
