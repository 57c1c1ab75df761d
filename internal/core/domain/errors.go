package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the root of every "entity absent" error. Match it with errors.Is
// when the kind of the missing entity does not matter.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("project %w", ErrNotFound)
	ErrEducationNotFound    = fmt.Errorf("education %w", ErrNotFound)
	ErrCertificateNotFound  = fmt.Errorf("certificate %w", ErrNotFound)
	ErrProfileImageNotFound = fmt.Errorf("profile image %w", ErrNotFound)
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("access forbidden")
)

// Profile image pipeline failures.
var (
	ErrImageDecode      = errors.New("image could not be decoded")
	ErrImageWrite       = errors.New("image could not be stored")
	ErrUploadInProgress = errors.New("another upload is in progress")
)

var ErrPartialFailure = errors.New("cascade delete partially failed")

// PartialFailureError reports a cascade delete that removed the parent record but
// could not remove every kind of child record. Nothing is rolled back.
type PartialFailureError struct {
	UserID  string
	Deleted []string
	Failed  map[string]error
}

func (e *PartialFailureError) Error() string {
	kinds := make([]string, 0, len(e.Failed))
	for kind, err := range e.Failed {
		kinds = append(kinds, kind+": "+err.Error())
	}
	return fmt.Sprintf("%s for user %s (deleted: [%s], failed: [%s])",
		ErrPartialFailure, e.UserID, strings.Join(e.Deleted, ", "), strings.Join(kinds, "; "))
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}

func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// Invalid wraps ErrValidation with a human readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
