// Package stats computes the dashboard counters from a full scan of the
// issues collection.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// ErrAggregation is returned when the issue scan fails. No partial counts
// accompany it.
var ErrAggregation = errors.New("aggregating issue stats")

// Aggregator counts issues by status.
type Aggregator struct {
	store db.Store
}

// New returns an Aggregator reading from store.
func New(store db.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate scans every issue and returns the counters. On failure the
// zero Stats is returned with an error wrapping both ErrAggregation and the
// store error.
func (a *Aggregator) Aggregate(ctx context.Context) (model.Stats, error) {
	snaps, err := a.store.Query(ctx, issues.Collection, db.Query{})
	if err != nil {
		return model.Stats{}, fmt.Errorf("%w: %w", ErrAggregation, err)
	}
	return Count(issues.FromSnapshots(snaps)), nil
}

// Count buckets issues by exact status. Statuses outside the three
// canonical values count towards Total only.
func Count(list []model.Issue) model.Stats {
	s := model.Stats{Total: len(list)}
	for _, i := range list {
		switch i.Status {
		case model.StatusOpen:
			s.Open++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusResolved:
			s.Resolved++
		}
	}
	return s
}
