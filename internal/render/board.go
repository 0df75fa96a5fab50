package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/tracker/internal/board"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

const (
	minColumnWidth   = 24
	defaultTermWidth = 100
	cardPadding      = 2 // left+right padding inside cards
	progressWidth    = 30
)

// BoardOptions configures board rendering behavior.
type BoardOptions struct {
	// MaxCards caps the cards drawn per column; zero draws all of them.
	MaxCards int
}

// RenderBoard renders the status columns side by side. Every column is drawn,
// including empty ones, so the layout is stable as issues move.
func RenderBoard(columns []board.Column, opts BoardOptions) string {
	total := 0
	for _, c := range columns {
		total += len(c.Issues)
	}
	if total == 0 {
		return EmptyState("No issues on the board.", "Create one with: tracker issue create", false)
	}

	if !ColorsEnabled() {
		return renderPlainBoard(columns, total, opts)
	}

	return renderColorBoard(columns, total, opts)
}

// terminalWidth returns the current terminal width, falling back to a default.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

func visibleCards(issues []model.Issue, limit int) ([]model.Issue, int) {
	if limit <= 0 || len(issues) <= limit {
		return issues, 0
	}
	return issues[:limit], len(issues) - limit
}

func resolvedCount(columns []board.Column) int {
	for _, c := range columns {
		if c.Status == model.StatusResolved {
			return len(c.Issues)
		}
	}
	return 0
}

func renderColorBoard(columns []board.Column, total int, opts BoardOptions) string {
	tw := terminalWidth()
	// Account for gaps between columns (1 space each).
	gaps := len(columns) - 1
	colWidth := max((tw-gaps)/len(columns), minColumnWidth)

	// Inner width available for card content (minus border/padding).
	cardContentWidth := max(colWidth-cardPadding-2, 5)

	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		rendered = append(rendered, renderColorColumn(col, colWidth, cardContentWidth, opts))
	}

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(formatProgressBar(resolvedCount(columns), total, progressWidth))

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n" + footer
}

func renderColorColumn(col board.Column, colWidth, contentWidth int, opts BoardOptions) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorFromName(col.Status.Color())).
		Width(colWidth).
		Align(lipgloss.Center)

	header := headerStyle.Render(fmt.Sprintf("%s %s (%d)", col.Status.Icon(), strings.ToUpper(string(col.Status)), len(col.Issues)))

	visible, overflow := visibleCards(col.Issues, opts.MaxCards)

	cards := make([]string, 0, len(visible)+2)
	cards = append(cards, header)

	dimStyle := lipgloss.NewStyle().
		Width(colWidth).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color("8"))

	if len(col.Issues) == 0 {
		cards = append(cards, dimStyle.Render("empty"))
	}

	for _, issue := range visible {
		cards = append(cards, renderColorCard(issue, colWidth, contentWidth))
	}

	if overflow > 0 {
		cards = append(cards, dimStyle.Render(fmt.Sprintf("+%d more", overflow)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderColorCard(issue model.Issue, colWidth, contentWidth int) string {
	contentWidth = max(contentWidth, 5)

	priority := lipgloss.NewStyle().
		Foreground(ColorFromName(issue.Priority.Color())).
		Render(priorityLabel(issue.Priority))
	line1 := fmt.Sprintf("%s %s", ShortID(issue.ID), priority)

	line2 := lipgloss.NewStyle().Bold(true).Render(truncate(issue.Title, contentWidth))

	assigneeStyle := lipgloss.NewStyle()
	if issue.Assignee == "" {
		assigneeStyle = assigneeStyle.Foreground(lipgloss.Color("8"))
	}
	line3 := assigneeStyle.Render(truncate(issue.AssigneeOrUnassigned(), contentWidth))

	cardStyle := lipgloss.NewStyle().
		Width(colWidth - 2). // account for outer spacing
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorFromName(issue.Status.Color()))

	return cardStyle.Render(strings.Join([]string{line1, line2, line3}, "\n"))
}

// formatProgressBar renders a text-based progress bar like "Resolved: ▰▰▱▱ 2/4".
func formatProgressBar(done, total, maxWidth int) string {
	prefix := "Resolved: "
	suffix := fmt.Sprintf(" %d/%d", done, total)
	barWidth := maxWidth - len(prefix) - len(suffix)
	if barWidth < 1 {
		return fmt.Sprintf("Resolved: %d/%d", done, total)
	}
	if barWidth > total {
		barWidth = total
	}

	filled := 0
	if total > 0 {
		filled = (done * barWidth) / total
	}
	empty := barWidth - filled

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", empty)
	return prefix + bar + suffix
}

// --- Plain text fallback ---

func renderPlainBoard(columns []board.Column, total int, opts BoardOptions) string {
	var b strings.Builder

	for i, col := range columns {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "=== %s %s (%d) ===\n", col.Status.Icon(), strings.ToUpper(string(col.Status)), len(col.Issues))

		if len(col.Issues) == 0 {
			b.WriteString("  (empty)\n")
			continue
		}

		visible, overflow := visibleCards(col.Issues, opts.MaxCards)
		for _, issue := range visible {
			renderPlainCard(&b, issue)
		}
		if overflow > 0 {
			fmt.Fprintf(&b, "  +%d more\n", overflow)
		}
	}

	fmt.Fprintf(&b, "\n%s: %d/%d\n", "Resolved", resolvedCount(columns), total)
	return b.String()
}

func renderPlainCard(b *strings.Builder, issue model.Issue) {
	fmt.Fprintf(b, "  %s [%s] %s\n", ShortID(issue.ID), string(issue.Priority), issue.AssigneeOrUnassigned())
	fmt.Fprintf(b, "  %s\n", truncate(issue.Title, maxTitleWidth))
	b.WriteString("\n")
}
