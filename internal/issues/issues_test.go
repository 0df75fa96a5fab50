package issues_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/db/dbtest"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/issues/issuestest"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// tick returns a clock that advances one second per call.
func tick(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestCreateStoresDocument(t *testing.T) {
	store := dbtest.Open(t)
	repo := issues.New(store).WithClock(tick(issuestest.Epoch))
	ctx := context.Background()

	created, err := repo.Create(ctx, model.NewIssue{
		Title:       "  Login broken ",
		Description: "500 on submit",
		Priority:    model.PriorityHigh,
		Assignee:    "   ",
	}, "u1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create returned empty ID")
	}

	snap, err := store.Get(ctx, issues.Collection, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := snap.String("title"); got != "Login broken" {
		t.Errorf("title = %q, want trimmed %q", got, "Login broken")
	}
	if got := snap.String("status"); got != "Open" {
		t.Errorf("status = %q, want default Open", got)
	}
	if got := snap.String("priority"); got != "High" {
		t.Errorf("priority = %q, want High", got)
	}
	if v, ok := snap.Data["assignee"]; !ok || v != nil {
		t.Errorf("assignee = %v, want null for blank input", v)
	}
	if snap.String("createdAt") != snap.String("updatedAt") {
		t.Errorf("createdAt %q != updatedAt %q on create", snap.String("createdAt"), snap.String("updatedAt"))
	}
	if got := snap.String("createdBy"); got != "u1" {
		t.Errorf("createdBy = %q, want u1", got)
	}
}

func TestCreateEmptyTitleNeverCallsStore(t *testing.T) {
	store := dbtest.NewFaulty(dbtest.Open(t))
	repo := issues.New(store)

	_, err := repo.Create(context.Background(), model.NewIssue{Title: "", Description: "x"}, "u1")
	if !model.IsValidationError(err) {
		t.Fatalf("Create err = %v, want validation error", err)
	}
	for _, op := range []string{"query", "get", "add", "set", "update", "delete"} {
		if n := store.Calls(op); n != 0 {
			t.Errorf("store %s called %d times, want 0", op, n)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	repo := issues.New(dbtest.Open(t))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestFromSnapshotKeepsUnknownStatus(t *testing.T) {
	store := dbtest.Open(t)
	ctx := context.Background()
	id, err := store.Add(ctx, issues.Collection, map[string]any{
		"title":     "legacy",
		"status":    "closed",
		"createdAt": "2023-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := issues.New(store).Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != "closed" {
		t.Errorf("Status = %q, want verbatim %q", got.Status, "closed")
	}
	if got.CreatedAt.Year() != 2023 {
		t.Errorf("CreatedAt = %v, want RFC 3339 value parsed", got.CreatedAt)
	}
	if got.AssigneeOrUnassigned() != model.Unassigned {
		t.Errorf("assignee = %q, want Unassigned", got.AssigneeOrUnassigned())
	}
}

func TestUpdateStatusTouchesOnlyStatusAndUpdatedAt(t *testing.T) {
	store := dbtest.Open(t)
	repo := issues.New(store).WithClock(tick(issuestest.Epoch.Add(time.Hour)))
	ctx := context.Background()
	seeded := issuestest.Seed(t, store, model.Issue{Title: "a", Description: "b"})

	before, err := store.Get(ctx, issues.Collection, seeded[0].ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	updatedAt, err := repo.UpdateStatus(ctx, seeded[0].ID, model.StatusResolved)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	after, err := store.Get(ctx, issues.Collection, seeded[0].ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if after.String("status") != "Resolved" {
		t.Errorf("status = %q, want Resolved", after.String("status"))
	}
	if after.String("updatedAt") != model.FormatTime(updatedAt) {
		t.Errorf("updatedAt = %q, want %q", after.String("updatedAt"), model.FormatTime(updatedAt))
	}
	if after.String("createdAt") != before.String("createdAt") {
		t.Errorf("createdAt changed from %q to %q", before.String("createdAt"), after.String("createdAt"))
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := dbtest.NewFaulty(dbtest.Open(t))
	repo := issues.New(store)

	_, err := repo.UpdateStatus(context.Background(), "any", model.Status("Closed"))
	if !model.IsValidationError(err) {
		t.Fatalf("UpdateStatus err = %v, want validation error", err)
	}
	if store.Calls("update") != 0 {
		t.Error("store updated despite invalid status")
	}
}

func TestSaveEditNeverSendsCreatedAt(t *testing.T) {
	store := dbtest.Open(t)
	repo := issues.New(store).WithClock(tick(issuestest.Epoch.Add(time.Hour)))
	ctx := context.Background()
	seeded := issuestest.Seed(t, store, model.Issue{Title: "a", Description: "b", Assignee: "dana"})

	edited := seeded[0]
	edited.Title = "renamed"
	edited.Assignee = ""
	edited.Priority = model.PriorityCritical
	// A stale in-memory createdAt must not reach the store.
	edited.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	saved, err := repo.SaveEdit(ctx, edited)
	if err != nil {
		t.Fatalf("SaveEdit failed: %v", err)
	}
	if !saved.UpdatedAt.After(seeded[0].UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", saved.UpdatedAt, seeded[0].UpdatedAt)
	}

	got, err := repo.Get(ctx, seeded[0].ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "renamed" || got.Priority != model.PriorityCritical || got.Assignee != "" {
		t.Errorf("saved issue = %+v, want edited fields", got)
	}
	if !got.CreatedAt.Equal(seeded[0].CreatedAt) {
		t.Errorf("CreatedAt = %v, want unchanged %v", got.CreatedAt, seeded[0].CreatedAt)
	}
}

func TestSaveEditMissingIssue(t *testing.T) {
	repo := issues.New(dbtest.Open(t))

	_, err := repo.SaveEdit(context.Background(), model.Issue{
		ID: "missing", Title: "a", Description: "b",
		Status: model.StatusOpen, Priority: model.PriorityLow,
	})
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("SaveEdit missing = %v, want ErrNotFound", err)
	}
}

func TestCommentsAreOrderedOldestFirst(t *testing.T) {
	store := dbtest.Open(t)
	repo := issues.New(store).WithClock(tick(issuestest.Epoch))
	ctx := context.Background()
	seeded := issuestest.Seed(t, store, model.Issue{Title: "a", Description: "b"})

	for _, content := range []string{"first", "second", "third"} {
		if _, err := repo.AddComment(ctx, seeded[0].ID, model.Comment{
			Content: content, AuthorID: "u1", AuthorName: "Dana",
		}); err != nil {
			t.Fatalf("AddComment(%q) failed: %v", content, err)
		}
	}

	comments, err := repo.Comments(ctx, seeded[0].ID)
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(comments) != len(want) {
		t.Fatalf("got %d comments, want %d", len(comments), len(want))
	}
	for i, c := range comments {
		if c.Content != want[i] {
			t.Errorf("comments[%d] = %q, want %q", i, c.Content, want[i])
		}
		if c.IssueID != seeded[0].ID {
			t.Errorf("comments[%d].IssueID = %q, want %q", i, c.IssueID, seeded[0].ID)
		}
		if c.AuthorName != "Dana" {
			t.Errorf("comments[%d].AuthorName = %q, want Dana", i, c.AuthorName)
		}
	}
}

func TestAddCommentToMissingIssue(t *testing.T) {
	repo := issues.New(dbtest.Open(t))

	_, err := repo.AddComment(context.Background(), "missing", model.Comment{Content: "hi"})
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("AddComment missing = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascadesToComments(t *testing.T) {
	store := dbtest.Open(t)
	repo := issues.New(store)
	ctx := context.Background()
	seeded := issuestest.Seed(t, store,
		model.Issue{Title: "doomed", Description: "x"},
		model.Issue{Title: "survivor", Description: "y"},
	)

	for _, i := range seeded {
		if _, err := repo.AddComment(ctx, i.ID, model.Comment{Content: "note"}); err != nil {
			t.Fatalf("AddComment failed: %v", err)
		}
	}

	if err := repo.Delete(ctx, seeded[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.Get(ctx, seeded[0].ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Get deleted issue = %v, want ErrNotFound", err)
	}
	orphans, err := store.Query(ctx, issues.CommentsOf(seeded[0].ID), db.Query{})
	if err != nil {
		t.Fatalf("Query comments failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("%d orphaned comments remain", len(orphans))
	}

	kept, err := repo.Comments(ctx, seeded[1].ID)
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("survivor has %d comments, want 1", len(kept))
	}
}

func TestDeleteMissingIssue(t *testing.T) {
	repo := issues.New(dbtest.Open(t))

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}

func TestResolveIDPrefix(t *testing.T) {
	store := dbtest.Open(t)
	repo := issues.New(store)
	ctx := context.Background()

	for _, id := range []string{"abc123", "abd456", "abc"} {
		fields := issues.Fields(model.Issue{Title: id, Status: model.StatusOpen, Priority: model.PriorityLow, CreatedAt: issuestest.Epoch, UpdatedAt: issuestest.Epoch})
		if err := store.Set(ctx, issues.Collection, id, fields); err != nil {
			t.Fatalf("Set %s failed: %v", id, err)
		}
	}

	tests := []struct {
		ref  string
		want string
		err  error
	}{
		{"abc", "abc", nil},
		{"abc1", "abc123", nil},
		{"abd", "abd456", nil},
		{"ab", "", issues.ErrAmbiguousID},
		{"zzz", "", db.ErrNotFound},
	}
	for _, tt := range tests {
		got, err := repo.Resolve(ctx, tt.ref)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("Resolve(%q) = %q, %v; want %v", tt.ref, got, err, tt.err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tt.ref, got, err, tt.want)
		}
	}

	if _, err := repo.Resolve(ctx, "  "); !model.IsValidationError(err) {
		t.Errorf("Resolve(blank) = %v, want validation error", err)
	}
}
