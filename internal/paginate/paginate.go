// Package paginate fetches issues newest first in fixed-size pages.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// DefaultPageSize is the number of issues per page when none is configured.
const DefaultPageSize = 5

// ErrInFlight is returned when a fetch is requested while another is still
// running. The request is dropped, not queued.
var ErrInFlight = errors.New("a page fetch is already in progress")

// Page is one fetched page of issues.
type Page struct {
	Items      []model.Issue `json:"items"`
	NextCursor *db.Cursor    `json:"-"`
	HasMore    bool          `json:"has_more"`
}

// Paginator walks the issues collection ordered by createdAt descending and
// accumulates the pages it has loaded.
type Paginator struct {
	store    db.Store
	pageSize int

	mu       sync.Mutex
	inFlight bool
	gen      int
	items    []model.Issue
	cursor   *db.Cursor
	hasMore  bool
	loaded   bool
}

// New returns a Paginator. A pageSize of zero or less selects
// DefaultPageSize.
func New(store db.Store, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{store: store, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// FetchPage reads the page after cursor, or the first page when cursor is
// nil. It does not touch accumulated state. One record beyond the page
// size is requested so HasMore is exact even when the collection size is a
// multiple of the page size.
func (p *Paginator) FetchPage(ctx context.Context, cursor *db.Cursor) (Page, error) {
	snaps, err := p.store.Query(ctx, issues.Collection, db.Query{
		OrderBy:    &db.Order{Field: issues.FieldCreatedAt, Direction: db.Desc},
		Limit:      p.pageSize + 1,
		StartAfter: cursor,
	})
	if err != nil {
		return Page{}, fmt.Errorf("fetching issue page: %w", err)
	}

	page := Page{HasMore: len(snaps) > p.pageSize}
	if page.HasMore {
		snaps = snaps[:p.pageSize]
	}
	page.Items = issues.FromSnapshots(snaps)
	if len(snaps) > 0 {
		page.NextCursor = snaps[len(snaps)-1].CursorFor(issues.FieldCreatedAt)
	}
	return page, nil
}

// Load fetches the first page and replaces any accumulated state with it.
func (p *Paginator) Load(ctx context.Context) error {
	gen, err := p.begin()
	if err != nil {
		return err
	}
	defer p.end()

	page, err := p.FetchPage(ctx, nil)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.gen {
		p.apply(page, false)
	}
	return nil
}

// LoadMore fetches the page after the last loaded one and appends it. It
// loads the first page if nothing has been loaded yet and is a no-op once
// the collection is exhausted.
func (p *Paginator) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	loaded, hasMore := p.loaded, p.hasMore
	p.mu.Unlock()
	if !loaded {
		return p.Load(ctx)
	}
	if !hasMore {
		return nil
	}

	gen, err := p.begin()
	if err != nil {
		return err
	}
	defer p.end()

	p.mu.Lock()
	cursor := p.cursor
	p.mu.Unlock()

	page, err := p.FetchPage(ctx, cursor)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.gen {
		p.apply(page, true)
	}
	return nil
}

// Commit replaces accumulated state with a first page fetched elsewhere,
// so callers that load several things at once can publish all of them or
// none.
func (p *Paginator) Commit(first Page) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.apply(first, false)
}

// Reset discards accumulated state so the next load starts from the
// beginning. The result of a fetch still in flight is discarded.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.items = nil
	p.cursor = nil
	p.hasMore = false
	p.loaded = false
}

// Items returns a copy of every issue loaded so far, newest first.
func (p *Paginator) Items() []model.Issue {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Issue, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore reports whether another page exists after the loaded ones.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Cursor returns the cursor after the last loaded issue, or nil.
func (p *Paginator) Cursor() *db.Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *Paginator) begin() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return 0, ErrInFlight
	}
	p.inFlight = true
	return p.gen, nil
}

func (p *Paginator) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
}

// apply must be called with p.mu held.
func (p *Paginator) apply(page Page, appendItems bool) {
	if appendItems {
		p.items = append(p.items, page.Items...)
		if page.NextCursor != nil {
			p.cursor = page.NextCursor
		}
	} else {
		p.items = append([]model.Issue(nil), page.Items...)
		p.cursor = page.NextCursor
	}
	p.hasMore = page.HasMore
	p.loaded = true
}
