package db

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidCursor is returned by ParseCursor for tokens that were not
// produced by Cursor.Token.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor references the last record of a previously returned page. It
// holds the document ID and the value of the field the query was ordered
// by, which is enough to resume an ordered scan.
type Cursor struct {
	ID    string `cbor:"1,keyasint"`
	Value any    `cbor:"2,keyasint,omitempty"`
}

// Token encodes the cursor as an opaque URL-safe string suitable for
// command-line flags and query parameters.
func (c *Cursor) Token() (string, error) {
	data, err := cbor.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseCursor decodes a token produced by Cursor.Token. An empty token
// yields a nil cursor (start from the beginning).
func ParseCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing document id", ErrInvalidCursor)
	}
	if !isScalar(c.Value) {
		return nil, fmt.Errorf("%w: ordering value of type %T", ErrInvalidCursor, c.Value)
	}
	return &c, nil
}

// isScalar reports whether v can be bound as a query argument. Ordered
// fields only ever hold strings, numbers, booleans or null.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
