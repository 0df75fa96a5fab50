package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/tracker/internal/model"
)

const (
	maxTitleWidth = 40
	shortIDLength = 8
)

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// ColorFromName maps model color name strings to lipgloss colors.
func ColorFromName(name string) lipgloss.Color {
	switch name {
	case "red":
		return lipgloss.Color("9")
	case "yellow":
		return lipgloss.Color("11")
	case "blue":
		return lipgloss.Color("12")
	case "green":
		return lipgloss.Color("10")
	case "magenta":
		return lipgloss.Color("13")
	case "gray":
		return lipgloss.Color("8")
	default:
		return lipgloss.Color("15")
	}
}

// ShortID returns the leading characters of a document ID. Any unique
// prefix is accepted back by the issue commands.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// statusLabel returns a status string with icon, e.g. "✔ Resolved".
func statusLabel(s model.Status) string {
	return s.Icon() + " " + string(s)
}

func priorityLabel(p model.Priority) string {
	return p.Emoji() + " " + string(p)
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// RenderTable renders a list of issues as a formatted table.
func RenderTable(issues []model.Issue) string {
	if len(issues) == 0 {
		return EmptyState("No issues found.", "Create one with: tracker issue create", false)
	}

	if !ColorsEnabled() {
		return renderPlainTable(issues)
	}

	headers := []string{"ID", "Status", "Priority", "Title", "Assignee", "Updated"}

	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, issueToRow(issue))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if row < 0 || row >= len(issues) {
				return s
			}

			switch col {
			case 0:
				return s.Foreground(lipgloss.Color("15"))
			case 1:
				return s.Foreground(ColorFromName(issues[row].Status.Color()))
			case 2:
				return s.Foreground(ColorFromName(issues[row].Priority.Color()))
			case 3:
				return s.Bold(true)
			case 4:
				if issues[row].Assignee == "" {
					return s.Foreground(lipgloss.Color("8"))
				}
				return s
			default:
				return s
			}
		})

	return t.Render()
}

func issueToRow(issue model.Issue) []string {
	return []string{
		ShortID(issue.ID),
		statusLabel(issue.Status),
		priorityLabel(issue.Priority),
		truncate(issue.Title, maxTitleWidth),
		issue.AssigneeOrUnassigned(),
		humanize.Time(issue.UpdatedAt),
	}
}

func renderPlainTable(issues []model.Issue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-10s %-14s %-12s %-40s %-15s %s\n",
		"ID", "Status", "Priority", "Title", "Assignee", "Updated")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 110))

	for _, issue := range issues {
		fmt.Fprintf(&b, "%-10s %-14s %-12s %-40s %-15s %s\n",
			ShortID(issue.ID),
			statusLabel(issue.Status),
			priorityLabel(issue.Priority),
			truncate(issue.Title, maxTitleWidth),
			issue.AssigneeOrUnassigned(),
			humanize.Time(issue.UpdatedAt),
		)
	}

	return b.String()
}
