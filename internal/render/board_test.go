package render

import (
	"strings"
	"testing"

	"github.com/ALT-F4-LLC/tracker/internal/board"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

func columns(issues ...model.Issue) []board.Column {
	buckets := board.Partition(issues)
	cols := make([]board.Column, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		cols = append(cols, board.Column{Status: s, Issues: buckets[s]})
	}
	return cols
}

func TestRenderBoardEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderBoard(columns(), BoardOptions{})
	if !strings.Contains(got, "No issues on the board.") {
		t.Errorf("RenderBoard(empty) = %q, want empty state", got)
	}
}

func TestRenderPlainBoardShowsEveryColumn(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderBoard(columns(
		makeTestIssue("a", "Task A", model.StatusOpen, model.PriorityHigh, ""),
		makeTestIssue("b", "Task B", model.StatusOpen, model.PriorityLow, ""),
	), BoardOptions{})

	for _, want := range []string{"=== ○ OPEN (2) ===", "=== ◐ IN PROGRESS (0) ===", "=== ✔ RESOLVED (0) ==="} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q, got:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "(empty)") {
		t.Errorf("expected empty column marker, got:\n%s", got)
	}
}

func TestRenderPlainBoardColumnOrder(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderBoard(columns(
		makeTestIssue("a", "Done", model.StatusResolved, model.PriorityLow, ""),
		makeTestIssue("b", "Doing", model.StatusInProgress, model.PriorityLow, ""),
		makeTestIssue("c", "Todo", model.StatusOpen, model.PriorityLow, ""),
	), BoardOptions{})

	open := strings.Index(got, "=== ○ OPEN")
	doing := strings.Index(got, "=== ◐ IN PROGRESS")
	done := strings.Index(got, "=== ✔ RESOLVED")
	if open < 0 || open >= doing || doing >= done {
		t.Errorf("columns out of order (%d, %d, %d):\n%s", open, doing, done, got)
	}
	if !strings.Contains(got, "Resolved: 1/3") {
		t.Errorf("expected resolved summary, got:\n%s", got)
	}
}

func TestRenderPlainBoardOverflow(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var list []model.Issue
	for _, id := range []string{"a", "b", "c", "d"} {
		list = append(list, makeTestIssue(id, "Task "+id, model.StatusOpen, model.PriorityLow, ""))
	}

	got := RenderBoard(columns(list...), BoardOptions{MaxCards: 2})
	if !strings.Contains(got, "+2 more") {
		t.Errorf("expected overflow marker, got:\n%s", got)
	}
}

func TestFormatProgressBar(t *testing.T) {
	if got := formatProgressBar(2, 4, 30); got != "Resolved: ▰▰▱▱ 2/4" {
		t.Errorf("formatProgressBar = %q", got)
	}
	if got := formatProgressBar(1, 2, 5); got != "Resolved: 1/2" {
		t.Errorf("narrow formatProgressBar = %q", got)
	}
}

func TestRenderColorBoard(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")

	got := RenderBoard(columns(
		makeTestIssue("a", "Task A", model.StatusInProgress, model.PriorityHigh, "dana"),
	), BoardOptions{})
	for _, want := range []string{"IN PROGRESS (1)", "Task A", "dana"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q, got:\n%s", want, got)
		}
	}
}
