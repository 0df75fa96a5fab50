package db

import (
	"errors"
	"testing"
)

func TestCursorTokenRoundTrip(t *testing.T) {
	c := &Cursor{ID: "abc-123", Value: "2024-03-01T10:00:00.000000000Z"}

	token, err := c.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	got, err := ParseCursor(token)
	if err != nil {
		t.Fatalf("ParseCursor failed: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("ID = %q, want %q", got.ID, c.ID)
	}
	if got.Value != c.Value {
		t.Errorf("Value = %v, want %v", got.Value, c.Value)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	c, err := ParseCursor("")
	if err != nil {
		t.Fatalf("ParseCursor empty failed: %v", err)
	}
	if c != nil {
		t.Errorf("ParseCursor empty = %+v, want nil", c)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"!!!", "AAAA"} {
		if _, err := ParseCursor(token); err == nil {
			t.Errorf("ParseCursor(%q) succeeded, want error", token)
		}
	}
}

func TestParseCursorRejectsCompositeValues(t *testing.T) {
	for _, value := range []any{
		map[string]any{"a": 1},
		[]any{"2024-03-01", 1},
	} {
		token, err := (&Cursor{ID: "x", Value: value}).Token()
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		if _, err := ParseCursor(token); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("ParseCursor(%v) = %v, want ErrInvalidCursor", value, err)
		}
	}

	for _, value := range []any{nil, "2024-03-01T10:00:00Z", int64(3), 1.5, true} {
		token, err := (&Cursor{ID: "x", Value: value}).Token()
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		if _, err := ParseCursor(token); err != nil {
			t.Errorf("ParseCursor(%v) = %v, want success", value, err)
		}
	}
}

func TestParseCursorRejectsMissingID(t *testing.T) {
	token, err := (&Cursor{Value: "x"}).Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if _, err := ParseCursor(token); err == nil {
		t.Error("ParseCursor without id succeeded, want error")
	}
}
