package output

import (
	"errors"

	"github.com/ALT-F4-LLC/tracker/internal/auth"
	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/paginate"
)

// UnavailableMessage replaces the text of store failures shown to users.
// The underlying error is logged instead.
const UnavailableMessage = "the issue store is unavailable, please try again"

// Classify maps an error returned by the domain packages to an ErrorCode.
// Errors it does not recognize are treated as store failures.
func Classify(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case model.IsValidationError(err), errors.Is(err, db.ErrInvalidCursor):
		return ErrValidation
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, auth.ErrNotSignedIn), errors.Is(err, auth.ErrInvalidCredentials):
		return ErrAuth
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, paginate.ErrInFlight):
		return ErrConflict
	default:
		return ErrUnavailable
	}
}

// PublicError returns the error to show for code. Store failures are
// replaced by UnavailableMessage; everything else is shown as is.
func PublicError(err error, code ErrorCode) error {
	if code == ErrUnavailable {
		return errors.New(UnavailableMessage)
	}
	return err
}
