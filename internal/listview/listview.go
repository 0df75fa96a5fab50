// Package listview is the filter, sort and search model behind the issue
// list.
package listview

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/filter"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// All is the status filter that matches every issue.
const All = "all"

// SortField names an issue field the list can be ordered by.
type SortField string

const (
	SortTitle     SortField = issues.FieldTitle
	SortStatus    SortField = issues.FieldStatus
	SortPriority  SortField = issues.FieldPriority
	SortAssignee  SortField = issues.FieldAssignee
	SortCreatedAt SortField = issues.FieldCreatedAt
)

// SortFields lists every sortable field.
var SortFields = []SortField{SortTitle, SortStatus, SortPriority, SortAssignee, SortCreatedAt}

// ParseSortField accepts a field name in any case; "created", "created_at"
// and "created-at" all select SortCreatedAt.
func ParseSortField(s string) (SortField, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "", "-", "").Replace(norm)
	if norm == "created" {
		norm = "createdat"
	}
	for _, f := range SortFields {
		if strings.ToLower(string(f)) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q: must be one of %q", s, SortFields)
}

// Params are the inputs of the list pipeline.
type Params struct {
	StatusFilter  string       `json:"status"`
	SortField     SortField    `json:"sort"`
	SortDirection db.Direction `json:"dir"`
	SearchTerm    string       `json:"q"`
}

// DefaultParams shows every issue newest first.
func DefaultParams() Params {
	return Params{
		StatusFilter:  All,
		SortField:     SortCreatedAt,
		SortDirection: db.Desc,
	}
}

// ParseStatusFilter accepts "all" (or "") and any spelling ParseStatus
// accepts, returning the canonical filter value.
func ParseStatusFilter(s string) (string, error) {
	if s == "" || strings.EqualFold(strings.TrimSpace(s), All) {
		return All, nil
	}
	status, err := model.ParseStatus(s)
	if err != nil {
		return "", err
	}
	return string(status), nil
}

// Validate checks that every parameter holds a known value.
func (p Params) Validate() error {
	if p.StatusFilter != All {
		if err := model.ValidateStatus(model.Status(p.StatusFilter)); err != nil {
			return err
		}
	}
	if _, err := ParseSortField(string(p.SortField)); err != nil {
		return err
	}
	if p.SortDirection != db.Asc && p.SortDirection != db.Desc {
		return fmt.Errorf("invalid sort direction %q", p.SortDirection)
	}
	return nil
}

// Query returns the store query for the filter and sort parts of p.
func (p Params) Query() db.Query {
	q := db.Query{
		OrderBy: &db.Order{Field: string(p.SortField), Direction: p.SortDirection},
	}
	if p.StatusFilter != All {
		q.Where = &db.Filter{Field: issues.FieldStatus, Value: p.StatusFilter}
	}
	return q
}

// Toggle applies a sort selection: the active field flips direction, any
// other field becomes active in ascending order.
func (p Params) Toggle(field SortField) Params {
	if p.SortField == field {
		p.SortDirection = p.SortDirection.Flip()
		return p
	}
	p.SortField = field
	p.SortDirection = db.Asc
	return p
}

// Model holds the current parameters and the issues they produced.
type Model struct {
	store  db.Store
	log    zerolog.Logger
	params Params
	issues []model.Issue
}

// New returns a Model with DefaultParams. Nothing is fetched until Run or
// a parameter change.
func New(store db.Store, log zerolog.Logger) *Model {
	return &Model{store: store, log: log, params: DefaultParams()}
}

// Params returns the current parameters.
func (m *Model) Params() Params {
	return m.params
}

// Issues returns the result of the last successful run.
func (m *Model) Issues() []model.Issue {
	return m.issues
}

// Run executes the full pipeline for the current parameters: filter and
// order in the store, then search locally. On failure the previous result
// is kept.
func (m *Model) Run(ctx context.Context) error {
	snaps, err := m.store.Query(ctx, issues.Collection, m.params.Query())
	if err != nil {
		m.log.Error().Err(err).
			Str("status", m.params.StatusFilter).
			Str("sort", string(m.params.SortField)).
			Msg("listing issues")
		return fmt.Errorf("listing issues: %w", err)
	}
	m.issues = filter.Search(issues.FromSnapshots(snaps), m.params.SearchTerm)
	return nil
}

// SetParams replaces every parameter and re-runs the pipeline.
func (m *Model) SetParams(ctx context.Context, p Params) error {
	if err := p.Validate(); err != nil {
		return &model.ValidationError{Field: "params", Message: err.Error()}
	}
	m.params = p
	return m.Run(ctx)
}

// SetFilter changes the status filter and re-runs the pipeline.
func (m *Model) SetFilter(ctx context.Context, status string) error {
	p := m.params
	p.StatusFilter = status
	return m.SetParams(ctx, p)
}

// SetSearch changes the search term and re-runs the pipeline.
func (m *Model) SetSearch(ctx context.Context, term string) error {
	p := m.params
	p.SearchTerm = term
	return m.SetParams(ctx, p)
}

// ToggleSort applies a sort selection and re-runs the pipeline.
func (m *Model) ToggleSort(ctx context.Context, field SortField) error {
	return m.SetParams(ctx, m.params.Toggle(field))
}
