// Package issues maps model.Issue and model.Comment onto documents in the
// store and provides the mutations shared by every view.
package issues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

const (
	// Collection is the top-level collection holding issues.
	Collection = "issues"
	// CommentsCollection is the subcollection name for comments under an issue.
	CommentsCollection = "comments"
)

// Document field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldAssignee    = "assignee"
	FieldCreatedBy   = "createdBy"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"

	fieldContent    = "content"
	fieldAuthorID   = "authorId"
	fieldAuthorName = "authorName"
)

// CommentsOf returns the path of the comments subcollection of an issue.
func CommentsOf(issueID string) string {
	return db.Sub(Collection, issueID, CommentsCollection)
}

// Fields converts an issue to its stored document. An empty assignee is
// stored as null.
func Fields(i model.Issue) map[string]any {
	return map[string]any{
		FieldTitle:       i.Title,
		FieldDescription: i.Description,
		FieldStatus:      string(i.Status),
		FieldPriority:    string(i.Priority),
		FieldAssignee:    nullable(i.Assignee),
		FieldCreatedBy:   i.CreatedBy,
		FieldCreatedAt:   model.FormatTime(i.CreatedAt),
		FieldUpdatedAt:   model.FormatTime(i.UpdatedAt),
	}
}

// FromSnapshot decodes an issue document. Decoding is lenient: an unknown
// status or priority is kept verbatim so that aggregation and the board can
// decide how to treat it, and unparseable timestamps become the zero time.
func FromSnapshot(s db.Snapshot) model.Issue {
	return model.Issue{
		ID:          s.ID,
		Title:       s.String(FieldTitle),
		Description: s.String(FieldDescription),
		Status:      model.Status(s.String(FieldStatus)),
		Priority:    model.Priority(s.String(FieldPriority)),
		Assignee:    s.String(FieldAssignee),
		CreatedBy:   s.String(FieldCreatedBy),
		CreatedAt:   timeField(s, FieldCreatedAt),
		UpdatedAt:   timeField(s, FieldUpdatedAt),
	}
}

// FromSnapshots decodes a query result in order.
func FromSnapshots(snaps []db.Snapshot) []model.Issue {
	out := make([]model.Issue, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, FromSnapshot(s))
	}
	return out
}

// CommentFields converts a comment to its stored document.
func CommentFields(c model.Comment) map[string]any {
	return map[string]any{
		fieldContent:    c.Content,
		fieldAuthorID:   c.AuthorID,
		fieldAuthorName: c.AuthorName,
		FieldCreatedAt:  model.FormatTime(c.CreatedAt),
	}
}

// CommentFromSnapshot decodes a comment document belonging to issueID.
func CommentFromSnapshot(issueID string, s db.Snapshot) model.Comment {
	return model.Comment{
		ID:         s.ID,
		IssueID:    issueID,
		Content:    s.String(fieldContent),
		AuthorID:   s.String(fieldAuthorID),
		AuthorName: s.String(fieldAuthorName),
		CreatedAt:  timeField(s, FieldCreatedAt),
	}
}

// Repository performs issue and comment mutations against a Store.
type Repository struct {
	store db.Store
	now   func() time.Time
}

// New returns a Repository over store.
func New(store db.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// WithClock replaces the time source used for createdAt and updatedAt.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Store returns the underlying document store.
func (r *Repository) Store() db.Store {
	return r.store
}

// Create validates the form and adds a new issue. A validation failure is
// returned as a *model.ValidationError without touching the store.
func (r *Repository) Create(ctx context.Context, form model.NewIssue, createdBy string) (model.Issue, error) {
	if err := form.Validate(); err != nil {
		return model.Issue{}, err
	}

	now := r.now()
	issue := model.Issue{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Status:      form.Status,
		Priority:    form.Priority,
		Assignee:    form.Assignee,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := r.store.Add(ctx, Collection, Fields(issue))
	if err != nil {
		return model.Issue{}, fmt.Errorf("creating issue: %w", err)
	}
	issue.ID = id
	return issue, nil
}

// Get reads one issue. A missing issue yields an error wrapping
// db.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (model.Issue, error) {
	snap, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return model.Issue{}, fmt.Errorf("getting issue %s: %w", id, err)
	}
	return FromSnapshot(snap), nil
}

// ErrAmbiguousID is returned by Resolve when a prefix matches more than one
// issue.
var ErrAmbiguousID = errors.New("ambiguous issue id prefix")

// Resolve returns the full ID of the issue whose ID is ref or starts with
// ref. An exact match wins; otherwise the prefix must be unique.
func (r *Repository) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &model.ValidationError{Field: "id", Message: "issue id is required"}
	}
	if _, err := r.store.Get(ctx, Collection, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return "", fmt.Errorf("resolving issue %s: %w", ref, err)
	}

	snaps, err := r.store.Query(ctx, Collection, db.Query{})
	if err != nil {
		return "", fmt.Errorf("resolving issue %s: %w", ref, err)
	}
	var match string
	for _, s := range snaps {
		if !strings.HasPrefix(s.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("resolving issue %s: %w", ref, ErrAmbiguousID)
		}
		match = s.ID
	}
	if match == "" {
		return "", fmt.Errorf("resolving issue %s: %w", ref, db.ErrNotFound)
	}
	return match, nil
}

// List runs q against the issues collection.
func (r *Repository) List(ctx context.Context, q db.Query) ([]model.Issue, error) {
	snaps, err := r.store.Query(ctx, Collection, q)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	return FromSnapshots(snaps), nil
}

// UpdateStatus persists {status, updatedAt} and returns the new updatedAt.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status model.Status) (time.Time, error) {
	if err := model.ValidateStatus(status); err != nil {
		return time.Time{}, &model.ValidationError{Field: "status", Message: err.Error()}
	}

	now := r.now()
	err := r.store.Update(ctx, Collection, id, map[string]any{
		FieldStatus:    string(status),
		FieldUpdatedAt: model.FormatTime(now),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("updating status of issue %s: %w", id, err)
	}
	return now, nil
}

// SaveEdit writes every user-editable field of issue back to the store.
// The write is last-write-wins; createdAt and createdBy are never sent.
func (r *Repository) SaveEdit(ctx context.Context, issue model.Issue) (model.Issue, error) {
	form := model.NewIssue{
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		Priority:    issue.Priority,
		Assignee:    issue.Assignee,
	}
	if err := form.Validate(); err != nil {
		return model.Issue{}, err
	}

	issue.Title = strings.TrimSpace(form.Title)
	issue.Description = strings.TrimSpace(form.Description)
	issue.Status = form.Status
	issue.Priority = form.Priority
	issue.Assignee = form.Assignee
	issue.UpdatedAt = r.now()

	err := r.store.Update(ctx, Collection, issue.ID, map[string]any{
		FieldTitle:       issue.Title,
		FieldDescription: issue.Description,
		FieldStatus:      string(issue.Status),
		FieldPriority:    string(issue.Priority),
		FieldAssignee:    nullable(issue.Assignee),
		FieldUpdatedAt:   model.FormatTime(issue.UpdatedAt),
	})
	if err != nil {
		return model.Issue{}, fmt.Errorf("saving issue %s: %w", issue.ID, err)
	}
	return issue, nil
}

// Delete removes an issue together with its comments. Comments go first
// so an interrupted delete never leaves orphans behind a missing parent.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Get(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting issue %s: %w", id, err)
	}

	comments, err := r.store.Query(ctx, CommentsOf(id), db.Query{})
	if err != nil {
		return fmt.Errorf("listing comments of issue %s: %w", id, err)
	}
	for _, c := range comments {
		err := r.store.Delete(ctx, CommentsOf(id), c.ID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("deleting comment %s: %w", c.ID, err)
		}
	}

	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting issue %s: %w", id, err)
	}
	return nil
}

// AddComment appends a comment to an existing issue. The comment's ID,
// IssueID and CreatedAt are assigned here.
func (r *Repository) AddComment(ctx context.Context, issueID string, c model.Comment) (model.Comment, error) {
	if _, err := r.store.Get(ctx, Collection, issueID); err != nil {
		return model.Comment{}, fmt.Errorf("adding comment to issue %s: %w", issueID, err)
	}

	c.IssueID = issueID
	c.CreatedAt = r.now()
	id, err := r.store.Add(ctx, CommentsOf(issueID), CommentFields(c))
	if err != nil {
		return model.Comment{}, fmt.Errorf("adding comment to issue %s: %w", issueID, err)
	}
	c.ID = id
	return c, nil
}

// Comments lists an issue's comments oldest first.
func (r *Repository) Comments(ctx context.Context, issueID string) ([]model.Comment, error) {
	snaps, err := r.store.Query(ctx, CommentsOf(issueID), db.Query{
		OrderBy: &db.Order{Field: FieldCreatedAt, Direction: db.Asc},
	})
	if err != nil {
		return nil, fmt.Errorf("listing comments of issue %s: %w", issueID, err)
	}

	out := make([]model.Comment, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, CommentFromSnapshot(issueID, s))
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timeField(s db.Snapshot, field string) time.Time {
	raw := s.String(field)
	if raw == "" {
		return time.Time{}
	}
	t, err := model.ParseTime(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
