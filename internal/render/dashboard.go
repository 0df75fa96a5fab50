package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// RenderStats renders the counters as a tree rooted at the total.
func RenderStats(s model.Stats) string {
	counts := []struct {
		status model.Status
		n      int
	}{
		{model.StatusOpen, s.Open},
		{model.StatusInProgress, s.InProgress},
		{model.StatusResolved, s.Resolved},
	}

	if !ColorsEnabled() {
		var b strings.Builder
		fmt.Fprintf(&b, "Total: %d\n", s.Total)
		for _, c := range counts {
			fmt.Fprintf(&b, "  %s: %d\n", c.status, c.n)
		}
		return b.String()
	}

	rootStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	t := tree.New().Root(rootStyle.Render(fmt.Sprintf("Total issues: %d", s.Total)))
	for _, c := range counts {
		style := lipgloss.NewStyle().Foreground(ColorFromName(c.status.Color()))
		t.Child(style.Render(fmt.Sprintf("%s %d", statusLabel(c.status), c.n)))
	}
	return t.String()
}

// RenderDashboard renders the counters followed by the recent issues. When
// more issues can be loaded a hint names the flag that fetches them.
func RenderDashboard(s model.Stats, recent []model.Issue, hasMore bool) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	var b strings.Builder
	b.WriteString(RenderStats(s))
	b.WriteString("\n\n")
	b.WriteString(StyledText("Recent issues", sectionStyle))
	b.WriteString("\n")
	b.WriteString(RenderTable(recent))
	if hasMore {
		hint := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
		b.WriteString("\n")
		b.WriteString(StyledText(fmt.Sprintf("Showing %d; load more with --pages", len(recent)), hint))
	}
	return b.String()
}
