// Package auth identifies the user acting on issues. Sessions are passed
// explicitly to the view-models that need them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// UsersCollection holds one document per account.
const UsersCollection = "users"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	// ErrNotSignedIn is returned when no session exists.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password; the two are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
)

// Session identifies the signed-in user.
type Session struct {
	UserID      string    `yaml:"user_id" json:"user_id"`
	DisplayName string    `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Email       string    `yaml:"email" json:"email"`
	SignedInAt  time.Time `yaml:"signed_in_at" json:"signed_in_at"`
}

// Name is the label stored with comments: the display name, else the email.
func (s Session) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// Provider reports and ends the current session.
type Provider interface {
	CurrentUser(ctx context.Context) (Session, error)
	SignOut(ctx context.Context) error
}

// Local keeps accounts in the document store with bcrypt password hashes
// and the current session in a YAML file.
type Local struct {
	store       db.Store
	sessionPath string
	cost        int
	now         func() time.Time
}

var _ Provider = (*Local)(nil)

// NewLocal returns a provider storing accounts in store and the session
// at sessionPath.
func NewLocal(store db.Store, sessionPath string) *Local {
	return &Local{
		store:       store,
		sessionPath: sessionPath,
		cost:        bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// SignUp creates an account and signs it in.
func (l *Local) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, &model.ValidationError{Field: "email", Message: fmt.Sprintf("invalid email %q", email)}
	}
	if len(password) < MinPasswordLength {
		return Session{}, &model.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		}
	}

	existing, err := l.findByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if existing != nil {
		return Session{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hashing password: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	id, err := l.store.Add(ctx, UsersCollection, map[string]any{
		"email":        email,
		"displayName":  displayName,
		"passwordHash": string(hash),
		"createdAt":    model.FormatTime(l.now()),
	})
	if err != nil {
		return Session{}, fmt.Errorf("creating account: %w", err)
	}

	return l.begin(Session{UserID: id, DisplayName: displayName, Email: email})
}

// SignIn checks credentials and starts a session.
func (l *Local) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := l.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if user == nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.String("passwordHash")), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return l.begin(Session{
		UserID:      user.ID,
		DisplayName: user.String("displayName"),
		Email:       user.String("email"),
	})
}

// CurrentUser reads the session file.
func (l *Local) CurrentUser(ctx context.Context) (Session, error) {
	data, err := os.ReadFile(l.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNotSignedIn
		}
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	if s.UserID == "" {
		return Session{}, ErrNotSignedIn
	}
	return s, nil
}

// SignOut removes the session file. Signing out twice is not an error.
func (l *Local) SignOut(ctx context.Context) error {
	if err := os.Remove(l.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

func (l *Local) begin(s Session) (Session, error) {
	s.SignedInAt = l.now().UTC().Truncate(time.Second)
	data, err := yaml.Marshal(s)
	if err != nil {
		return Session{}, fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(l.sessionPath, data, 0o600); err != nil {
		return Session{}, fmt.Errorf("writing session: %w", err)
	}
	return s, nil
}

func (l *Local) findByEmail(ctx context.Context, email string) (*db.Snapshot, error) {
	snaps, err := l.store.Query(ctx, UsersCollection, db.Query{
		Where: &db.Filter{Field: "email", Value: email},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
