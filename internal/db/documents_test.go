package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func seed(t *testing.T, s *Documents, collection string, docs ...map[string]any) []string {
	t.Helper()
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		id, err := s.Add(context.Background(), collection, d)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func titles(snaps []Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.String("title")
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddAndGet(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "issues", map[string]any{"title": "Login broken", "assignee": nil})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == "" {
		t.Fatal("Add returned empty id")
	}

	snap, err := s.Get(ctx, "issues", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.ID != id {
		t.Errorf("ID = %q, want %q", snap.ID, id)
	}
	if snap.String("title") != "Login broken" {
		t.Errorf("title = %q, want %q", snap.String("title"), "Login broken")
	}
	if v, ok := snap.Data["assignee"]; !ok || v != nil {
		t.Errorf("assignee = %v (present=%v), want explicit null", v, ok)
	}
}

func TestGetNotFound(t *testing.T) {
	s := mustStore(t)

	_, err := s.Get(context.Background(), "issues", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestGetIsScopedToCollection(t *testing.T) {
	s := mustStore(t)
	ids := seed(t, s, "issues", map[string]any{"title": "a"})

	_, err := s.Get(context.Background(), "users", ids[0])
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get in other collection = %v, want ErrNotFound", err)
	}
}

func TestQueryFilter(t *testing.T) {
	s := mustStore(t)
	seed(t, s, "issues",
		map[string]any{"title": "a", "status": "Open"},
		map[string]any{"title": "b", "status": "Resolved"},
		map[string]any{"title": "c", "status": "Open"},
	)

	snaps, err := s.Query(context.Background(), "issues", Query{
		Where:   &Filter{Field: "status", Value: "Open"},
		OrderBy: &Order{Field: "title", Direction: Asc},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(snaps); !equalStrings(got, []string{"a", "c"}) {
		t.Errorf("titles = %v, want [a c]", got)
	}
}

func TestQueryFilterNull(t *testing.T) {
	s := mustStore(t)
	seed(t, s, "issues",
		map[string]any{"title": "a", "assignee": nil},
		map[string]any{"title": "b", "assignee": "dana"},
	)

	snaps, err := s.Query(context.Background(), "issues", Query{
		Where: &Filter{Field: "assignee", Value: nil},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(snaps); !equalStrings(got, []string{"a"}) {
		t.Errorf("titles = %v, want [a]", got)
	}
}

func TestQueryOrderDirections(t *testing.T) {
	s := mustStore(t)
	seed(t, s, "issues",
		map[string]any{"title": "b", "createdAt": "2024-01-02"},
		map[string]any{"title": "a", "createdAt": "2024-01-01"},
		map[string]any{"title": "c", "createdAt": "2024-01-03"},
	)
	ctx := context.Background()

	asc, err := s.Query(ctx, "issues", Query{OrderBy: &Order{Field: "createdAt", Direction: Asc}})
	if err != nil {
		t.Fatalf("Query asc failed: %v", err)
	}
	if got := titles(asc); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Errorf("asc = %v, want [a b c]", got)
	}

	desc, err := s.Query(ctx, "issues", Query{OrderBy: &Order{Field: "createdAt", Direction: Desc}})
	if err != nil {
		t.Fatalf("Query desc failed: %v", err)
	}
	if got := titles(desc); !equalStrings(got, []string{"c", "b", "a"}) {
		t.Errorf("desc = %v, want [c b a]", got)
	}
}

func TestQueryLimit(t *testing.T) {
	s := mustStore(t)
	for i := range 4 {
		seed(t, s, "issues", map[string]any{"title": fmt.Sprintf("t%d", i)})
	}

	snaps, err := s.Query(context.Background(), "issues", Query{
		OrderBy: &Order{Field: "title", Direction: Asc},
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := titles(snaps); !equalStrings(got, []string{"t0", "t1"}) {
		t.Errorf("titles = %v, want [t0 t1]", got)
	}
}

func TestQueryStartAfterWalksWithoutGapsOrDuplicates(t *testing.T) {
	s := mustStore(t)
	// Several documents share a createdAt value so resumption has to rely
	// on the ID tie-breaker.
	for i := range 7 {
		seed(t, s, "issues", map[string]any{
			"title":     fmt.Sprintf("t%d", i),
			"createdAt": fmt.Sprintf("2024-01-0%d", i/3+1),
		})
	}
	ctx := context.Background()

	for _, dir := range []Direction{Asc, Desc} {
		order := &Order{Field: "createdAt", Direction: dir}
		all, err := s.Query(ctx, "issues", Query{OrderBy: order})
		if err != nil {
			t.Fatalf("Query all failed: %v", err)
		}

		var walked []Snapshot
		var cursor *Cursor
		for {
			page, err := s.Query(ctx, "issues", Query{OrderBy: order, Limit: 2, StartAfter: cursor})
			if err != nil {
				t.Fatalf("Query page failed: %v", err)
			}
			if len(page) == 0 {
				break
			}
			walked = append(walked, page...)
			cursor = page[len(page)-1].CursorFor("createdAt")
		}

		if len(walked) != len(all) {
			t.Fatalf("%s: walked %d documents, want %d", dir, len(walked), len(all))
		}
		for i := range all {
			if walked[i].ID != all[i].ID {
				t.Errorf("%s: walked[%d] = %s, want %s", dir, i, walked[i].ID, all[i].ID)
			}
		}
	}
}

func TestQueryRejectsInvalidFieldName(t *testing.T) {
	s := mustStore(t)

	_, err := s.Query(context.Background(), "issues", Query{
		OrderBy: &Order{Field: "title') --", Direction: Asc},
	})
	if err == nil {
		t.Fatal("Query with invalid field name succeeded, want error")
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	s := mustStore(t)

	snaps, err := s.Query(context.Background(), "issues", Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if snaps == nil || len(snaps) != 0 {
		t.Errorf("Query empty = %v, want empty non-nil slice", snaps)
	}
}

func TestSetUpserts(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "users", "u1", map[string]any{"name": "Dana", "role": "admin"}); err != nil {
		t.Fatalf("Set create failed: %v", err)
	}
	if err := s.Set(ctx, "users", "u1", map[string]any{"name": "Dana R."}); err != nil {
		t.Fatalf("Set replace failed: %v", err)
	}

	snap, err := s.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.String("name") != "Dana R." {
		t.Errorf("name = %q, want %q", snap.String("name"), "Dana R.")
	}
	if _, ok := snap.Data["role"]; ok {
		t.Error("Set kept field from replaced document")
	}
}

func TestUpdateMergesTopLevelFields(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()
	ids := seed(t, s, "issues", map[string]any{"title": "a", "status": "Open"})

	if err := s.Update(ctx, "issues", ids[0], map[string]any{"status": "Resolved"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	snap, err := s.Get(ctx, "issues", ids[0])
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.String("status") != "Resolved" {
		t.Errorf("status = %q, want Resolved", snap.String("status"))
	}
	if snap.String("title") != "a" {
		t.Errorf("title = %q, want a (untouched)", snap.String("title"))
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := mustStore(t)

	err := s.Update(context.Background(), "issues", "missing", map[string]any{"status": "Open"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()
	ids := seed(t, s, "issues", map[string]any{"title": "a"})

	if err := s.Delete(ctx, "issues", ids[0]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "issues", ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "issues", ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestSubcollectionsAreIsolated(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()
	ids := seed(t, s, "issues", map[string]any{"title": "a"}, map[string]any{"title": "b"})

	seed(t, s, Sub("issues", ids[0], "comments"), map[string]any{"content": "first"})
	seed(t, s, Sub("issues", ids[1], "comments"), map[string]any{"content": "other"})

	snaps, err := s.Query(ctx, Sub("issues", ids[0], "comments"), Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(snaps) != 1 || snaps[0].String("content") != "first" {
		t.Errorf("comments = %+v, want only [first]", snaps)
	}

	issues, err := s.Query(ctx, "issues", Query{})
	if err != nil {
		t.Fatalf("Query issues failed: %v", err)
	}
	if len(issues) != 2 {
		t.Errorf("issues count = %d, want 2", len(issues))
	}
}

func TestSub(t *testing.T) {
	if got := Sub("issues", "abc", "comments"); got != "issues/abc/comments" {
		t.Errorf("Sub = %q, want issues/abc/comments", got)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"asc", Asc, false},
		{"DESC", Desc, false},
		{" Desc ", Desc, false},
		{"up", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if Asc.Flip() != Desc || Desc.Flip() != Asc {
		t.Error("Flip did not swap directions")
	}
}
