package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/auth"
	"github.com/ALT-F4-LLC/tracker/internal/board"
	"github.com/ALT-F4-LLC/tracker/internal/dashboard"
	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/detail"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/listview"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/paginate"
)

const sessionKey = "session"

// Handlers serve the API. Each request builds its own view-model, so no
// view state is shared between requests.
type Handlers struct {
	store    db.Store
	repo     *issues.Repository
	sessions auth.Provider
	log      zerolog.Logger
	opts     Options
}

// NewHandlers returns handlers reading and writing through store.
func NewHandlers(store db.Store, sessions auth.Provider, log zerolog.Logger, opts Options) *Handlers {
	if opts.PageSize <= 0 {
		opts.PageSize = paginate.DefaultPageSize
	}
	if opts.Dashboard.PageSize <= 0 {
		opts.Dashboard.PageSize = opts.PageSize
	}
	return &Handlers{
		store:    store,
		repo:     issues.New(store),
		sessions: sessions,
		log:      log,
		opts:     opts,
	}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// requireSession rejects the request unless a user is signed in and stores
// the session on the context.
func (h *Handlers) requireSession(c *gin.Context) {
	s, err := h.sessions.CurrentUser(c.Request.Context())
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func session(c *gin.Context) auth.Session {
	s, _ := c.Get(sessionKey)
	out, _ := s.(auth.Session)
	return out
}

type pageResponse struct {
	Items      []model.Issue `json:"items"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func newPageResponse(items []model.Issue, hasMore bool, cursor *db.Cursor) (pageResponse, error) {
	if items == nil {
		items = []model.Issue{}
	}
	resp := pageResponse{Items: items, HasMore: hasMore}
	if hasMore && cursor != nil {
		token, err := cursor.Token()
		if err != nil {
			return resp, err
		}
		resp.NextCursor = token
	}
	return resp, nil
}

func (h *Handlers) Dashboard(c *gin.Context) {
	d := dashboard.New(h.store, h.log, h.opts.Dashboard)
	if err := d.Load(c.Request.Context()); err != nil {
		h.abort(c, err)
		return
	}
	page, err := newPageResponse(d.Recent(), d.HasMore(), d.Cursor())
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":  d.Stats(),
		"recent": page,
	})
}

func (h *Handlers) RecentIssues(c *gin.Context) {
	var cursor *db.Cursor
	if token := c.Query("cursor"); token != "" {
		var err error
		if cursor, err = db.ParseCursor(token); err != nil {
			h.abort(c, &model.ValidationError{Field: "cursor", Message: err.Error()})
			return
		}
	}

	page, err := paginate.New(h.store, h.opts.PageSize).FetchPage(c.Request.Context(), cursor)
	if err != nil {
		h.abort(c, err)
		return
	}
	resp, err := newPageResponse(page.Items, page.HasMore, page.NextCursor)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) ListIssues(c *gin.Context) {
	p, err := listParams(c)
	if err != nil {
		h.abort(c, &model.ValidationError{Field: "params", Message: err.Error()})
		return
	}

	m := listview.New(h.store, h.log)
	if err := m.SetParams(c.Request.Context(), p); err != nil {
		h.abort(c, err)
		return
	}
	list := m.Issues()
	if list == nil {
		list = []model.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{
		"issues": list,
		"total":  len(list),
		"params": m.Params(),
	})
}

// listParams reads the list query. Requests are stateless, so there is no
// previous selection to toggle: ?sort=<field> orders by that field
// ascending and ?dir=asc|desc overrides the direction. Without sort the
// list is newest first.
func listParams(c *gin.Context) (listview.Params, error) {
	p := listview.DefaultParams()

	status, err := listview.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return p, err
	}
	p.StatusFilter = status
	p.SearchTerm = strings.TrimSpace(c.Query("q"))

	if s := c.Query("sort"); s != "" {
		field, err := listview.ParseSortField(s)
		if err != nil {
			return p, err
		}
		p.SortField = field
		p.SortDirection = db.Asc
	}
	if d := c.Query("dir"); d != "" {
		dir, err := db.ParseDirection(d)
		if err != nil {
			return p, err
		}
		p.SortDirection = dir
	}
	return p, nil
}

type createRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Assignee    *string `json:"assignee"`
}

func (h *Handlers) CreateIssue(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	form := model.DefaultNewIssue()
	form.Title = req.Title
	form.Description = req.Description
	if req.Status != "" {
		form.Status = model.Status(req.Status)
	}
	if req.Priority != "" {
		form.Priority = model.Priority(req.Priority)
	}
	if req.Assignee != nil {
		form.Assignee = *req.Assignee
	}

	created, err := h.repo.Create(c.Request.Context(), form, session(c).UserID)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Header("Location", "/api/issues/"+created.ID)
	c.JSON(http.StatusCreated, created)
}

// openDetail loads the issue named by the :id parameter.
func (h *Handlers) openDetail(c *gin.Context) (*detail.View, bool) {
	v, err := detail.Open(c.Request.Context(), h.repo, h.log, c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return nil, false
	}
	return v, true
}

func (h *Handlers) GetIssue(c *gin.Context) {
	v, ok := h.openDetail(c)
	if !ok {
		return
	}
	comments := v.Comments()
	if comments == nil {
		comments = []model.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"issue": v.Issue(), "comments": comments})
}

// editRequest holds the fields a PATCH may change; absent fields keep
// their loaded values. An explicit null assignee unassigns.
type editRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	Assignee    optionalString `json:"assignee"`
}

func (h *Handlers) EditIssue(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v, ok := h.openDetail(c)
	if !ok {
		return
	}
	edited := v.Issue()
	if req.Title != nil {
		edited.Title = *req.Title
	}
	if req.Description != nil {
		edited.Description = *req.Description
	}
	if req.Status != nil {
		edited.Status = model.Status(*req.Status)
	}
	if req.Priority != nil {
		edited.Priority = model.Priority(*req.Priority)
	}
	if req.Assignee.Set {
		edited.Assignee = req.Assignee.Value
	}

	if err := v.SaveEdit(c.Request.Context(), edited); err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v.Issue())
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v, ok := h.openDetail(c)
	if !ok {
		return
	}
	if err := v.ChangeStatus(c.Request.Context(), model.Status(req.Status)); err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v.Issue())
}

func (h *Handlers) DeleteIssue(c *gin.Context) {
	v, ok := h.openDetail(c)
	if !ok {
		return
	}
	if err := v.Delete(c.Request.Context()); err != nil {
		h.abort(c, err)
		return
	}
	h.log.Info().Str("issue", v.Issue().ID).Str("user", session(c).UserID).Msg("issue deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListComments(c *gin.Context) {
	v, ok := h.openDetail(c)
	if !ok {
		return
	}
	comments := v.Comments()
	if comments == nil {
		comments = []model.Comment{}
	}
	c.JSON(http.StatusOK, comments)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handlers) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v, ok := h.openDetail(c)
	if !ok {
		return
	}
	comment, added, err := v.AddComment(c.Request.Context(), session(c), req.Content)
	if err != nil {
		h.abort(c, err)
		return
	}
	if !added {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handlers) Board(c *gin.Context) {
	b := board.New(h.repo, h.log)
	if err := b.Load(c.Request.Context()); err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(b))
}

type moveRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (h *Handlers) MoveOnBoard(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ID == "" {
		h.abort(c, &model.ValidationError{Field: "id", Message: "issue id is required"})
		return
	}

	b := board.New(h.repo, h.log)
	if err := b.Load(c.Request.Context()); err != nil {
		h.abort(c, err)
		return
	}
	if err := b.MoveIssue(c.Request.Context(), req.ID, model.Status(req.Status)); err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(b))
}

func boardResponse(b *board.Board) gin.H {
	columns := b.Columns()
	for i := range columns {
		if columns[i].Issues == nil {
			columns[i].Issues = []model.Issue{}
		}
	}
	return gin.H{"columns": columns, "total": b.Count()}
}

// optionalString distinguishes an absent JSON field from an explicit null.
type optionalString struct {
	Set   bool
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return fmt.Errorf("assignee must be a string or null: %w", err)
	}
	return nil
}
