package render

import (
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// RenderDetail renders a full issue view: header, metadata, description and
// comments.
func RenderDetail(issue model.Issue, comments []model.Comment) string {
	if !ColorsEnabled() {
		return renderPlainDetail(issue, comments)
	}

	sections := []string{
		renderHeader(issue),
		renderMetadata(issue),
		renderDescription(issue.Description),
	}

	if len(comments) > 0 {
		sections = append(sections, renderComments(comments))
	}

	return strings.Join(sections, "\n\n")
}

func renderHeader(issue model.Issue) string {
	idStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	titleStyle := lipgloss.NewStyle().Bold(true)
	statusStyle := lipgloss.NewStyle().
		Foreground(ColorFromName(issue.Status.Color())).
		Bold(true)
	priorityStyle := lipgloss.NewStyle().
		Foreground(ColorFromName(issue.Priority.Color())).
		Bold(true)

	return fmt.Sprintf("%s  %s\n%s  %s",
		idStyle.Render(ShortID(issue.ID)),
		titleStyle.Render(issue.Title),
		statusStyle.Render(statusLabel(issue.Status)),
		priorityStyle.Render(priorityLabel(issue.Priority)),
	)
}

func renderMetadata(issue model.Issue) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("ID:"), issue.ID),
		fmt.Sprintf("%s %s", labelStyle.Render("Assignee:"), issue.AssigneeOrUnassigned()),
	}
	if issue.CreatedBy != "" {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Created by:"), issue.CreatedBy))
	}
	lines = append(lines,
		fmt.Sprintf("%s %s", labelStyle.Render("Created:"), humanize.Time(issue.CreatedAt)),
		fmt.Sprintf("%s %s", labelStyle.Render("Updated:"), humanize.Time(issue.UpdatedAt)),
	)

	return strings.Join(lines, "\n")
}

func renderDescription(description string) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	header := sectionStyle.Render("Description")

	rendered, err := RenderMarkdown(description)
	if err != nil {
		rendered = description
	}

	return header + "\n" + rendered
}

// RenderCommentList renders a styled comment list. Exported for reuse by the
// comment list CLI command.
func RenderCommentList(comments []model.Comment) string {
	if len(comments) == 0 {
		return EmptyState("No comments yet.", "Add one with: tracker issue comment add <id> -m <text>", false)
	}
	if !ColorsEnabled() {
		var b strings.Builder
		writePlainComments(&b, comments)
		return b.String()
	}
	return renderComments(comments)
}

func renderComments(comments []model.Comment) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	header := sectionStyle.Render(fmt.Sprintf("Comments (%d)", len(comments)))

	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		body, err := RenderMarkdown(c.Content)
		if err != nil {
			body = c.Content
		}

		commentHeader := fmt.Sprintf("%s  %s",
			authorStyle.Render(c.AuthorOrAnonymous()),
			timeStyle.Render(humanize.Time(c.CreatedAt)),
		)

		parts = append(parts, commentHeader+"\n"+body)
	}

	return header + "\n" + strings.Join(parts, "\n\n")
}

func writePlainComments(b *strings.Builder, comments []model.Comment) {
	fmt.Fprintf(b, "Comments (%d)\n", len(comments))
	for _, c := range comments {
		fmt.Fprintf(b, "  %s  %s\n  %s\n\n", c.AuthorOrAnonymous(), humanize.Time(c.CreatedAt), c.Content)
	}
}

// renderPlainDetail renders a detail view without any color or styling.
func renderPlainDetail(issue model.Issue, comments []model.Comment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", ShortID(issue.ID), issue.Title)
	fmt.Fprintf(&b, "%s  %s\n", statusLabel(issue.Status), priorityLabel(issue.Priority))

	b.WriteString("\n")
	fmt.Fprintf(&b, "ID: %s\n", issue.ID)
	fmt.Fprintf(&b, "Assignee: %s\n", issue.AssigneeOrUnassigned())
	if issue.CreatedBy != "" {
		fmt.Fprintf(&b, "Created by: %s\n", issue.CreatedBy)
	}
	fmt.Fprintf(&b, "Created: %s\n", humanize.Time(issue.CreatedAt))
	fmt.Fprintf(&b, "Updated: %s\n", humanize.Time(issue.UpdatedAt))

	fmt.Fprintf(&b, "\nDescription\n%s\n", issue.Description)

	if len(comments) > 0 {
		b.WriteString("\n")
		writePlainComments(&b, comments)
	}

	return b.String()
}
