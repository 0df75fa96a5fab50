package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the storage format for timestamps. It is fixed-width and
// always UTC, so lexicographic order of stored values equals chronological
// order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp written by FormatTime. RFC 3339 values are
// accepted as well so hand-edited or imported documents still load.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Status represents the workflow state of an issue.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists every status in board column order.
var Statuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusResolved,
}

// ValidateStatus returns an error if s is not a recognized status. The
// comparison is exact; use ParseStatus for user input.
func ValidateStatus(s Status) error {
	for _, v := range Statuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid status %q: must be one of %q", s, Statuses)
}

// ParseStatus accepts any casing of a status name, plus the hyphenated
// "in-progress" spelling, and returns the canonical value.
func ParseStatus(input string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(input))
	norm = strings.ReplaceAll(norm, "-", " ")
	norm = strings.ReplaceAll(norm, "_", " ")
	for _, v := range Statuses {
		if strings.ToLower(string(v)) == norm {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of %q", input, Statuses)
}

// Color returns a color name string suitable for terminal rendering.
func (s Status) Color() string {
	switch s {
	case StatusOpen:
		return "yellow"
	case StatusInProgress:
		return "blue"
	case StatusResolved:
		return "green"
	default:
		return "white"
	}
}

// Icon returns a single-glyph marker for the status.
func (s Status) Icon() string {
	switch s {
	case StatusOpen:
		return "○"
	case StatusInProgress:
		return "◐"
	case StatusResolved:
		return "✔"
	default:
		return "?"
	}
}

// Priority represents the urgency of an issue.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from highest to lowest.
var Priorities = []Priority{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

// ValidatePriority returns an error if p is not a recognized priority.
func ValidatePriority(p Priority) error {
	for _, v := range Priorities {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("invalid priority %q: must be one of %q", p, Priorities)
}

// ParsePriority accepts any casing of a priority name and returns the
// canonical value.
func ParsePriority(input string) (Priority, error) {
	norm := strings.TrimSpace(input)
	for _, v := range Priorities {
		if strings.EqualFold(string(v), norm) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q: must be one of %q", input, Priorities)
}

// Color returns a color name string suitable for terminal rendering.
func (p Priority) Color() string {
	switch p {
	case PriorityCritical:
		return "red"
	case PriorityHigh:
		return "magenta"
	case PriorityMedium:
		return "blue"
	case PriorityLow:
		return "gray"
	default:
		return "white"
	}
}

// Emoji returns a short urgency marker for the priority level.
func (p Priority) Emoji() string {
	switch p {
	case PriorityCritical:
		return "!!!"
	case PriorityHigh:
		return "!!"
	case PriorityMedium:
		return "!"
	case PriorityLow:
		return "-"
	default:
		return " "
	}
}

// Unassigned is displayed in place of an empty assignee.
const Unassigned = "Unassigned"

// Issue represents a tracked issue.
type Issue struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssigneeOrUnassigned returns the assignee, falling back to Unassigned.
func (i Issue) AssigneeOrUnassigned() string {
	if i.Assignee == "" {
		return Unassigned
	}
	return i.Assignee
}

// issueJSON is the JSON wire format for Issue.
type issueJSON struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Assignee    *string `json:"assignee"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// MarshalJSON implements custom JSON serialization for Issue. An empty
// assignee is written as null.
func (i Issue) MarshalJSON() ([]byte, error) {
	j := issueJSON{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    string(i.Priority),
		CreatedBy:   i.CreatedBy,
		CreatedAt:   i.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   i.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if i.Assignee != "" {
		a := i.Assignee
		j.Assignee = &a
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements custom JSON deserialization for Issue.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var j issueJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	i.ID = j.ID
	i.Title = j.Title
	i.Description = j.Description

	i.Status = Status(j.Status)
	if err := ValidateStatus(i.Status); err != nil {
		return err
	}

	i.Priority = Priority(j.Priority)
	if err := ValidatePriority(i.Priority); err != nil {
		return err
	}

	i.Assignee = ""
	if j.Assignee != nil {
		i.Assignee = *j.Assignee
	}
	i.CreatedBy = j.CreatedBy

	createdAt, err := time.Parse(time.RFC3339, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	i.CreatedAt = createdAt

	updatedAt, err := time.Parse(time.RFC3339, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("parsing updated_at: %w", err)
	}
	i.UpdatedAt = updatedAt

	return nil
}
