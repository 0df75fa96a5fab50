package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ALT-F4-LLC/tracker/internal/db/dbtest"
	"github.com/ALT-F4-LLC/tracker/internal/model"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	l := NewLocal(dbtest.Open(t), filepath.Join(t.TempDir(), "session.yaml"))
	l.cost = bcrypt.MinCost
	return l
}

func TestSignUpStartsSession(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	s, err := l.SignUp(ctx, " Dana@Example.com ", "hunter22", "Dana")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if s.UserID == "" || s.Email != "dana@example.com" || s.DisplayName != "Dana" {
		t.Errorf("session = %+v", s)
	}

	cur, err := l.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if cur.UserID != s.UserID || cur.Email != s.Email {
		t.Errorf("CurrentUser = %+v, want %+v", cur, s)
	}
	if !cur.SignedInAt.Equal(s.SignedInAt) {
		t.Errorf("SignedInAt = %v, want %v", cur.SignedInAt, s.SignedInAt)
	}
}

func TestPasswordIsHashed(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	s, err := l.SignUp(ctx, "dana@example.com", "hunter22", "")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	snap, err := l.store.Get(ctx, UsersCollection, s.UserID)
	if err != nil {
		t.Fatalf("Get user failed: %v", err)
	}
	hash := snap.String("passwordHash")
	if hash == "" || hash == "hunter22" {
		t.Fatalf("passwordHash = %q, want bcrypt hash", hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	if _, err := l.SignUp(ctx, "not-an-email", "hunter22", ""); !model.IsValidationError(err) {
		t.Errorf("bad email = %v, want validation error", err)
	}
	if _, err := l.SignUp(ctx, "dana@example.com", "short", ""); !model.IsValidationError(err) {
		t.Errorf("short password = %v, want validation error", err)
	}
	if _, err := l.SignUp(ctx, "dana@example.com", "hunter22", ""); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if _, err := l.SignUp(ctx, "DANA@example.com", "another1", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email = %v, want ErrEmailTaken", err)
	}
}

func TestSignIn(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()
	created, err := l.SignUp(ctx, "dana@example.com", "hunter22", "Dana")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := l.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if _, err := l.SignIn(ctx, "dana@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := l.SignIn(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
	if _, err := l.CurrentUser(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("CurrentUser after failed sign-in = %v, want ErrNotSignedIn", err)
	}

	s, err := l.SignIn(ctx, "Dana@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if s.UserID != created.UserID || s.DisplayName != "Dana" {
		t.Errorf("SignIn session = %+v, want user %s", s, created.UserID)
	}
}

func TestSignOut(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()
	if _, err := l.SignUp(ctx, "dana@example.com", "hunter22", ""); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if err := l.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if _, err := os.Stat(l.sessionPath); !os.IsNotExist(err) {
		t.Errorf("session file still present: %v", err)
	}
	if _, err := l.CurrentUser(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("CurrentUser = %v, want ErrNotSignedIn", err)
	}
	if err := l.SignOut(ctx); err != nil {
		t.Errorf("second SignOut = %v, want nil", err)
	}
}

func TestSessionName(t *testing.T) {
	if got := (Session{DisplayName: "Dana", Email: "d@x.io"}).Name(); got != "Dana" {
		t.Errorf("Name = %q, want Dana", got)
	}
	if got := (Session{Email: "d@x.io"}).Name(); got != "d@x.io" {
		t.Errorf("Name = %q, want email fallback", got)
	}
}
