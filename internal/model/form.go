package model

import (
	"errors"
	"strings"
)

// ValidationError reports a required field that is missing or an
// enumerated field holding an unknown value. It never reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NewIssue holds the values collected by the issue creation form.
type NewIssue struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
}

// DefaultNewIssue returns a form pre-filled with Open / Medium.
func DefaultNewIssue() NewIssue {
	return NewIssue{
		Status:   StatusOpen,
		Priority: PriorityMedium,
	}
}

// Validate checks required fields and enum values. Blank status or
// priority fall back to the form defaults.
func (n *NewIssue) Validate() error {
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Description) == "" {
		field := "title"
		if strings.TrimSpace(n.Title) != "" {
			field = "description"
		}
		return &ValidationError{Field: field, Message: "title and description are required"}
	}
	if n.Status == "" {
		n.Status = StatusOpen
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if err := ValidateStatus(n.Status); err != nil {
		return &ValidationError{Field: "status", Message: err.Error()}
	}
	if err := ValidatePriority(n.Priority); err != nil {
		return &ValidationError{Field: "priority", Message: err.Error()}
	}
	n.Assignee = strings.TrimSpace(n.Assignee)
	return nil
}
