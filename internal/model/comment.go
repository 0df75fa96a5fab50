package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Comment represents a comment on an issue. Comments are immutable once
// written.
type Comment struct {
	ID         string
	IssueID    string
	Content    string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
}

// AuthorOrAnonymous returns the author name, falling back to "anonymous"
// when the field is empty.
func (c Comment) AuthorOrAnonymous() string {
	if c.AuthorName == "" {
		return "anonymous"
	}
	return c.AuthorName
}

// commentJSON is the JSON wire format for Comment.
type commentJSON struct {
	ID         string `json:"id"`
	IssueID    string `json:"issue_id"`
	Content    string `json:"content"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// MarshalJSON implements custom JSON serialization for Comment.
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(commentJSON{
		ID:         c.ID,
		IssueID:    c.IssueID,
		Content:    c.Content,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorOrAnonymous(),
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// UnmarshalJSON implements custom JSON deserialization for Comment.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var j commentJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	c.ID = j.ID
	c.IssueID = j.IssueID
	c.Content = j.Content
	c.AuthorID = j.AuthorID
	c.AuthorName = j.AuthorName

	createdAt, err := time.Parse(time.RFC3339, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	c.CreatedAt = createdAt

	return nil
}
