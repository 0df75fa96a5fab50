package filter

import (
	"testing"

	"github.com/ALT-F4-LLC/tracker/internal/model"
)

func TestSearchMatchesTitleOrDescriptionAnyCase(t *testing.T) {
	list := []model.Issue{
		{ID: "1", Title: "Login bug", Description: "x"},
		{ID: "2", Title: "Other", Description: "login fails"},
	}

	for _, term := range []string{"login", "LOGIN", "LoGiN"} {
		got := Search(list, term)
		if len(got) != 2 {
			t.Errorf("Search(%q) returned %d issues, want 2", term, len(got))
		}
	}

	if got := Search(list, "zzz"); len(got) != 0 {
		t.Errorf("Search(zzz) returned %d issues, want 0", len(got))
	}
}

func TestSearchEmptyTermKeepsEverything(t *testing.T) {
	list := []model.Issue{{ID: "1"}, {ID: "2"}}
	if got := Search(list, ""); len(got) != 2 {
		t.Errorf("Search(\"\") returned %d issues, want 2", len(got))
	}
}

func TestSearchPreservesOrder(t *testing.T) {
	list := []model.Issue{
		{ID: "c", Title: "crash"},
		{ID: "b", Title: "nothing"},
		{ID: "a", Description: "crash on start"},
	}
	got := Search(list, "crash")
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Errorf("Search order = %+v, want [c a]", got)
	}
}

func TestHasStatus(t *testing.T) {
	set := ToStatusSet([]model.Status{model.StatusOpen, model.StatusInProgress})

	if !HasStatus(model.Issue{Status: model.StatusOpen}, set) {
		t.Error("Open not in {Open, In Progress}")
	}
	if HasStatus(model.Issue{Status: model.StatusResolved}, set) {
		t.Error("Resolved in {Open, In Progress}")
	}
	if !HasStatus(model.Issue{Status: "weird"}, ToStatusSet(nil)) {
		t.Error("nil set should match everything")
	}
}
