package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/auth"
	"github.com/ALT-F4-LLC/tracker/internal/dashboard"
	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/db/dbtest"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/issues/issuestest"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/server"
)

// sessions is a Provider with a fixed signed-in user, or none.
type sessions struct {
	current *auth.Session
}

func (s *sessions) CurrentUser(context.Context) (auth.Session, error) {
	if s.current == nil {
		return auth.Session{}, auth.ErrNotSignedIn
	}
	return *s.current, nil
}

func (s *sessions) SignOut(context.Context) error {
	s.current = nil
	return nil
}

var dana = &auth.Session{UserID: "u1", DisplayName: "Dana", Email: "dana@example.com"}

func newRouter(t *testing.T, store db.Store, user *auth.Session) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return server.NewRouter(store, &sessions{current: user}, zerolog.Nop(), server.Options{
		Env:       "test",
		PageSize:  5,
		Dashboard: dashboard.Options{MaxRetries: -1},
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	rec := do(t, newRouter(t, dbtest.Open(t), nil), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	store := dbtest.Open(t)
	issuestest.Seed(t, store, issuestest.Generate(12)...)

	rec := do(t, newRouter(t, store, nil), http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got struct {
		Stats  model.Stats `json:"stats"`
		Recent struct {
			Items      []model.Issue `json:"items"`
			HasMore    bool          `json:"has_more"`
			NextCursor string        `json:"next_cursor"`
		} `json:"recent"`
	}
	decode(t, rec, &got)

	if got.Stats.Total != 12 || got.Stats.Open != 4 {
		t.Errorf("stats = %+v", got.Stats)
	}
	if len(got.Recent.Items) != 5 || !got.Recent.HasMore || got.Recent.NextCursor == "" {
		t.Errorf("recent = %d items, has_more %v, cursor %q", len(got.Recent.Items), got.Recent.HasMore, got.Recent.NextCursor)
	}
}

func TestRecentIssuesFollowsCursor(t *testing.T) {
	store := dbtest.Open(t)
	issuestest.Seed(t, store, issuestest.Generate(7)...)
	h := newRouter(t, store, nil)

	type page struct {
		Items      []model.Issue `json:"items"`
		HasMore    bool          `json:"has_more"`
		NextCursor string        `json:"next_cursor"`
	}
	var first, second page
	decode(t, do(t, h, http.MethodGet, "/api/issues/recent", nil), &first)
	if len(first.Items) != 5 || !first.HasMore {
		t.Fatalf("first page = %d items, has_more %v", len(first.Items), first.HasMore)
	}
	if first.Items[0].Title != "issue-06" {
		t.Errorf("first item = %q, want newest", first.Items[0].Title)
	}

	decode(t, do(t, h, http.MethodGet, "/api/issues/recent?cursor="+first.NextCursor, nil), &second)
	if len(second.Items) != 2 || second.HasMore || second.NextCursor != "" {
		t.Errorf("second page = %d items, has_more %v, cursor %q", len(second.Items), second.HasMore, second.NextCursor)
	}

	rec := do(t, h, http.MethodGet, "/api/issues/recent?cursor=garbage", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad cursor status = %d, want 422", rec.Code)
	}

	for _, value := range []any{map[string]any{"a": 1}, []any{1, 2}} {
		token, err := (&db.Cursor{ID: "x", Value: value}).Token()
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		rec := do(t, h, http.MethodGet, "/api/issues/recent?cursor="+token, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("cursor value %v: status = %d, want 422, body %s", value, rec.Code, rec.Body)
		}
		var body map[string]any
		decode(t, rec, &body)
		if body["retryable"] == true {
			t.Errorf("cursor value %v: marked retryable", value)
		}
	}
}

func TestListIssuesFilterAndSearch(t *testing.T) {
	store := dbtest.Open(t)
	issuestest.Seed(t, store,
		model.Issue{Title: "Login fails", Description: "x", Status: model.StatusOpen},
		model.Issue{Title: "Logout slow", Description: "x", Status: model.StatusResolved},
		model.Issue{Title: "Signup", Description: "x", Status: model.StatusOpen},
	)
	h := newRouter(t, store, nil)

	var got struct {
		Issues []model.Issue `json:"issues"`
		Total  int           `json:"total"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/issues?status=open&q=log", nil), &got)
	if got.Total != 1 || got.Issues[0].Title != "Login fails" {
		t.Errorf("filtered = %+v", got.Issues)
	}

	for _, q := range []string{"status=Closed", "sort=color", "dir=sideways"} {
		rec := do(t, h, http.MethodGet, "/api/issues?"+q, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", q, rec.Code)
		}
	}
}

func TestListIssuesSortParams(t *testing.T) {
	store := dbtest.Open(t)
	issuestest.Seed(t, store, issuestest.Generate(3)...)
	h := newRouter(t, store, nil)

	tests := []struct {
		query string
		want  []string
		dir   string
	}{
		{"", []string{"issue-02", "issue-01", "issue-00"}, "desc"},
		{"sort=createdAt", []string{"issue-00", "issue-01", "issue-02"}, "asc"},
		{"sort=createdAt&dir=desc", []string{"issue-02", "issue-01", "issue-00"}, "desc"},
		{"sort=title", []string{"issue-00", "issue-01", "issue-02"}, "asc"},
		{"sort=title&dir=desc", []string{"issue-02", "issue-01", "issue-00"}, "desc"},
	}
	for _, tt := range tests {
		var got struct {
			Issues []model.Issue `json:"issues"`
			Params struct {
				Dir string `json:"dir"`
			} `json:"params"`
		}
		decode(t, do(t, h, http.MethodGet, "/api/issues?"+tt.query, nil), &got)

		titles := make([]string, len(got.Issues))
		for i, issue := range got.Issues {
			titles[i] = issue.Title
		}
		if strings.Join(titles, ",") != strings.Join(tt.want, ",") || got.Params.Dir != tt.dir {
			t.Errorf("%q: order %v dir %q, want %v %q", tt.query, titles, got.Params.Dir, tt.want, tt.dir)
		}
	}
}

func TestMutationsRequireSession(t *testing.T) {
	h := newRouter(t, dbtest.Open(t), nil)

	rec := do(t, h, http.MethodPost, "/api/issues", map[string]string{"title": "t", "description": "d"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["code"] != string(output.ErrAuth) {
		t.Errorf("code = %v, want %s", body["code"], output.ErrAuth)
	}
}

func TestCreateAndGetIssue(t *testing.T) {
	store := dbtest.Open(t)
	h := newRouter(t, store, dana)

	rec := do(t, h, http.MethodPost, "/api/issues", map[string]any{
		"title": "  Crash on save ", "description": "stack trace", "priority": "High",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created model.Issue
	decode(t, rec, &created)
	if created.Title != "Crash on save" || created.Status != model.StatusOpen || created.CreatedBy != "u1" {
		t.Errorf("created = %+v", created)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/issues/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	var got struct {
		Issue    model.Issue     `json:"issue"`
		Comments []model.Comment `json:"comments"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/issues/"+created.ID, nil), &got)
	if got.Issue.ID != created.ID || got.Comments == nil {
		t.Errorf("get = %+v", got)
	}

	rec = do(t, h, http.MethodPost, "/api/issues", map[string]any{"title": "only a title"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid create status = %d, want 422", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/issues", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed create status = %d, want 400", rec.Code)
	}
}

func TestGetMissingIssueRedirects(t *testing.T) {
	rec := do(t, newRouter(t, dbtest.Open(t), nil), http.MethodGet, "/api/issues/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["redirect"] != "/issues" {
		t.Errorf("redirect = %v, want /issues", body["redirect"])
	}
}

func TestEditIssue(t *testing.T) {
	store := dbtest.Open(t)
	seeded := issuestest.Seed(t, store, model.Issue{
		Title: "Old", Description: "desc", Assignee: "alex", CreatedBy: "u9",
	})
	h := newRouter(t, store, dana)
	path := "/api/issues/" + seeded[0].ID

	rec := do(t, h, http.MethodPatch, path, `{"title":"New","assignee":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got, err := issues.New(store).Get(context.Background(), seeded[0].ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "New" || got.Description != "desc" || got.Assignee != "" || got.CreatedBy != "u9" {
		t.Errorf("stored = %+v", got)
	}

	rec = do(t, h, http.MethodPatch, path, `{"priority":"Urgent"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad priority status = %d, want 422", rec.Code)
	}
}

func TestChangeStatusAndBoardMove(t *testing.T) {
	store := dbtest.Open(t)
	seeded := issuestest.Seed(t, store, issuestest.Generate(3)...)
	h := newRouter(t, store, dana)

	rec := do(t, h, http.MethodPut, "/api/issues/"+seeded[0].ID+"/status", map[string]string{"status": "Resolved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status change = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodPost, "/api/board/move", map[string]string{"id": seeded[1].ID, "status": "Resolved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("move = %d, body %s", rec.Code, rec.Body)
	}
	var b struct {
		Columns []struct {
			Status model.Status  `json:"status"`
			Issues []model.Issue `json:"issues"`
		} `json:"columns"`
		Total int `json:"total"`
	}
	decode(t, rec, &b)
	if b.Total != 3 || len(b.Columns) != 3 {
		t.Fatalf("board = %+v", b)
	}
	if b.Columns[2].Status != model.StatusResolved || len(b.Columns[2].Issues) != 3 {
		t.Errorf("resolved column = %+v", b.Columns[2])
	}
	if len(b.Columns[0].Issues) != 0 || b.Columns[0].Issues == nil {
		t.Errorf("open column = %#v, want empty list", b.Columns[0].Issues)
	}

	rec = do(t, h, http.MethodPost, "/api/board/move", map[string]string{"id": seeded[0].ID, "status": "Closed"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid move = %d, want 422", rec.Code)
	}
}

func TestCommentsAndDelete(t *testing.T) {
	store := dbtest.Open(t)
	seeded := issuestest.Seed(t, store, model.Issue{Title: "t", Description: "d"})
	h := newRouter(t, store, dana)
	path := "/api/issues/" + seeded[0].ID

	rec := do(t, h, http.MethodPost, path+"/comments", map[string]string{"content": "   "})
	if rec.Code != http.StatusNoContent {
		t.Errorf("blank comment = %d, want 204", rec.Code)
	}
	rec = do(t, h, http.MethodPost, path+"/comments", map[string]string{"content": "Reproduced"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment = %d, body %s", rec.Code, rec.Body)
	}

	var comments []model.Comment
	decode(t, do(t, h, http.MethodGet, path+"/comments", nil), &comments)
	if len(comments) != 1 || comments[0].AuthorName != "Dana" {
		t.Errorf("comments = %+v", comments)
	}

	if rec := do(t, h, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, body %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
	left, err := store.Query(context.Background(), issues.CommentsOf(seeded[0].ID), db.Query{})
	if err != nil || len(left) != 0 {
		t.Errorf("comments left = %d, %v", len(left), err)
	}
}

func TestStoreFailureHidesCause(t *testing.T) {
	store := dbtest.NewFaulty(dbtest.Open(t))
	store.Fail("query", errors.New("sqlite: disk I/O error at /var/lib/tracker"))
	h := newRouter(t, store, nil)

	for _, path := range []string{"/api/dashboard", "/api/issues", "/api/board"} {
		rec := do(t, h, http.MethodGet, path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
			continue
		}
		if strings.Contains(rec.Body.String(), "sqlite") {
			t.Errorf("%s: body leaks cause: %s", path, rec.Body)
		}
		var body map[string]any
		decode(t, rec, &body)
		if body["error"] != output.UnavailableMessage || body["retryable"] != true {
			t.Errorf("%s: body = %v", path, body)
		}
	}
}
