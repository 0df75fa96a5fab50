// Package detail is the single-issue view: the issue, its comments and the
// mutations available on it.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/auth"
	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// ErrRedirect is returned by Open when the issue does not exist. Callers
// send the user back to the issue list instead of showing an error.
var ErrRedirect = errors.New("issue not found, return to the list")

// ListPath is where callers redirect after ErrRedirect or Delete.
const ListPath = "/issues"

// View holds one issue and its comments.
type View struct {
	repo     *issues.Repository
	log      zerolog.Logger
	issue    model.Issue
	comments []model.Comment
}

// Open loads an issue and its comments, oldest comment first.
func Open(ctx context.Context, repo *issues.Repository, log zerolog.Logger, id string) (*View, error) {
	issue, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Debug().Str("issue", id).Msg("issue not found, redirecting")
			return nil, fmt.Errorf("%w: %w", ErrRedirect, err)
		}
		log.Error().Err(err).Str("issue", id).Msg("loading issue")
		return nil, err
	}

	comments, err := repo.Comments(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("issue", id).Msg("loading comments")
		return nil, err
	}

	return &View{repo: repo, log: log, issue: issue, comments: comments}, nil
}

// Issue returns the loaded issue.
func (v *View) Issue() model.Issue {
	return v.issue
}

// Comments returns the loaded comments, oldest first.
func (v *View) Comments() []model.Comment {
	return v.comments
}

// ChangeStatus persists a new status.
func (v *View) ChangeStatus(ctx context.Context, status model.Status) error {
	updatedAt, err := v.repo.UpdateStatus(ctx, v.issue.ID, status)
	if err != nil {
		v.logFailure(err, "changing status")
		return err
	}
	v.issue.Status = status
	v.issue.UpdatedAt = updatedAt
	return nil
}

// SaveEdit writes the edited copy back in full. Concurrent edits made
// since Open are overwritten.
func (v *View) SaveEdit(ctx context.Context, edited model.Issue) error {
	edited.ID = v.issue.ID
	edited.CreatedBy = v.issue.CreatedBy
	edited.CreatedAt = v.issue.CreatedAt

	saved, err := v.repo.SaveEdit(ctx, edited)
	if err != nil {
		v.logFailure(err, "saving edit")
		return err
	}
	v.issue = saved
	return nil
}

// AddComment appends a comment by the session's user. Blank content is
// ignored and reported as (zero Comment, false, nil).
func (v *View) AddComment(ctx context.Context, session auth.Session, content string) (model.Comment, bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, false, nil
	}

	c, err := v.repo.AddComment(ctx, v.issue.ID, model.Comment{
		Content:    content,
		AuthorID:   session.UserID,
		AuthorName: session.Name(),
	})
	if err != nil {
		v.logFailure(err, "adding comment")
		return model.Comment{}, false, err
	}
	v.comments = append(v.comments, c)
	return c, true, nil
}

// Delete removes the issue and its comments. Callers then return to
// ListPath.
func (v *View) Delete(ctx context.Context) error {
	if err := v.repo.Delete(ctx, v.issue.ID); err != nil {
		v.logFailure(err, "deleting issue")
		return err
	}
	return nil
}

func (v *View) logFailure(err error, action string) {
	if model.IsValidationError(err) {
		return
	}
	v.log.Error().Err(err).Str("issue", v.issue.ID).Msg(action)
}
