// Package board partitions issues into status columns and moves issues
// between them.
package board

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// Column is one status bucket in display order.
type Column struct {
	Status model.Status  `json:"status"`
	Issues []model.Issue `json:"issues"`
}

// Board holds the issues of the three canonical statuses. Issues with any
// other status are not shown and not counted.
type Board struct {
	repo    *issues.Repository
	log     zerolog.Logger
	buckets map[model.Status][]model.Issue
}

// New returns an empty board; call Load to fill it.
func New(repo *issues.Repository, log zerolog.Logger) *Board {
	return &Board{repo: repo, log: log, buckets: emptyBuckets()}
}

// Load fetches every issue once and partitions it. On failure the board
// keeps its previous contents.
func (b *Board) Load(ctx context.Context) error {
	list, err := b.repo.List(ctx, db.Query{
		OrderBy: &db.Order{Field: issues.FieldCreatedAt, Direction: db.Desc},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("loading board")
		return fmt.Errorf("loading board: %w", err)
	}
	b.buckets = Partition(list)
	return nil
}

// Partition groups issues into the canonical status buckets, preserving
// their relative order.
func Partition(list []model.Issue) map[model.Status][]model.Issue {
	buckets := emptyBuckets()
	for _, i := range list {
		if _, ok := buckets[i.Status]; ok {
			buckets[i.Status] = append(buckets[i.Status], i)
		}
	}
	return buckets
}

// Columns returns the buckets in board order: Open, In Progress, Resolved.
func (b *Board) Columns() []Column {
	cols := make([]Column, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		cols = append(cols, Column{Status: s, Issues: b.Bucket(s)})
	}
	return cols
}

// Bucket returns a copy of the issues in one column.
func (b *Board) Bucket(status model.Status) []model.Issue {
	return slices.Clone(b.buckets[status])
}

// Count returns the number of issues shown on the board.
func (b *Board) Count() int {
	n := 0
	for _, list := range b.buckets {
		n += len(list)
	}
	return n
}

// Find locates an issue on the board.
func (b *Board) Find(issueID string) (model.Issue, bool) {
	for _, s := range model.Statuses {
		for _, i := range b.buckets[s] {
			if i.ID == issueID {
				return i, true
			}
		}
	}
	return model.Issue{}, false
}

// MoveIssue moves an issue to the target column. The move is applied
// locally first; if persisting {status, updatedAt} fails the board is
// restored to its state before the move and the error is returned.
// Moving an issue to its current column does nothing.
func (b *Board) MoveIssue(ctx context.Context, issueID string, target model.Status) error {
	if err := model.ValidateStatus(target); err != nil {
		return &model.ValidationError{Field: "status", Message: err.Error()}
	}

	issue, ok := b.Find(issueID)
	if !ok {
		return fmt.Errorf("issue %s is not on the board: %w", issueID, db.ErrNotFound)
	}
	if issue.Status == target {
		return nil
	}

	snapshot := b.snapshot()
	source := issue.Status
	issue.Status = target
	b.buckets[source] = slices.DeleteFunc(b.buckets[source], func(i model.Issue) bool {
		return i.ID == issueID
	})
	b.insert(issue)

	updatedAt, err := b.repo.UpdateStatus(ctx, issueID, target)
	if err != nil {
		b.buckets = snapshot
		b.log.Error().Err(err).
			Str("issue", issueID).
			Str("from", string(source)).
			Str("to", string(target)).
			Msg("moving issue, reverted")
		return fmt.Errorf("moving issue %s to %s: %w", issueID, target, err)
	}

	b.setUpdatedAt(target, issueID, updatedAt)
	return nil
}

// insert places an issue in its bucket keeping newest-first order.
func (b *Board) insert(issue model.Issue) {
	list := b.buckets[issue.Status]
	at, _ := slices.BinarySearchFunc(list, issue, func(e, t model.Issue) int {
		return t.CreatedAt.Compare(e.CreatedAt)
	})
	b.buckets[issue.Status] = slices.Insert(list, at, issue)
}

func (b *Board) setUpdatedAt(status model.Status, issueID string, at time.Time) {
	for k := range b.buckets[status] {
		if b.buckets[status][k].ID == issueID {
			b.buckets[status][k].UpdatedAt = at
		}
	}
}

func (b *Board) snapshot() map[model.Status][]model.Issue {
	out := make(map[model.Status][]model.Issue, len(b.buckets))
	for s, list := range b.buckets {
		out[s] = slices.Clone(list)
	}
	return out
}

func emptyBuckets() map[model.Status][]model.Issue {
	buckets := make(map[model.Status][]model.Issue, len(model.Statuses))
	for _, s := range model.Statuses {
		buckets[s] = nil
	}
	return buckets
}
