// Package issuestest seeds issue documents for tests.
package issuestest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// Epoch is the creation time of the first generated issue.
var Epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// Seed writes each issue to the store exactly as given, filling in
// defaults for blank status, priority and timestamps, and returns the
// issues with their assigned IDs.
func Seed(t testing.TB, store db.Store, list ...model.Issue) []model.Issue {
	t.Helper()
	out := make([]model.Issue, 0, len(list))
	for _, i := range list {
		if i.Status == "" {
			i.Status = model.StatusOpen
		}
		if i.Priority == "" {
			i.Priority = model.PriorityMedium
		}
		if i.CreatedAt.IsZero() {
			i.CreatedAt = Epoch
		}
		if i.UpdatedAt.IsZero() {
			i.UpdatedAt = i.CreatedAt
		}
		id, err := store.Add(context.Background(), issues.Collection, issues.Fields(i))
		if err != nil {
			t.Fatalf("seeding issue %q: %v", i.Title, err)
		}
		i.ID = id
		out = append(out, i)
	}
	return out
}

// Generate returns n issues titled "issue-00".."issue-NN" created one
// minute apart starting at Epoch.
func Generate(n int) []model.Issue {
	out := make([]model.Issue, n)
	for k := range n {
		out[k] = model.Issue{
			Title:       fmt.Sprintf("issue-%02d", k),
			Description: fmt.Sprintf("description %d", k),
			Status:      model.Statuses[k%len(model.Statuses)],
			Priority:    model.PriorityMedium,
			CreatedBy:   "seed",
			CreatedAt:   Epoch.Add(time.Duration(k) * time.Minute),
		}
	}
	return out
}
