package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSignedIn is returned when an operation requires an authenticated
// actor and none is present.
var ErrNotSignedIn = errors.New("not signed in")

// ValidationError reports required fields missing from a create or update.
// It is raised client-side before any network call, or server-side by the
// backend's schema check.
type ValidationError struct {
	Entity  string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Entity, strings.Join(e.Missing, ", "))
}

// NotFoundError reports an update, get or delete against an id that does not
// exist remotely.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Entity, e.ID)
}

// RemoteError wraps any other failure from the backend. The message is
// platform-supplied and opaque; no retryable/non-retryable classification is
// attempted.
type RemoteError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// UploadError reports an attachment rejected by the client-side type/size
// guard or a failed remote upload. It always aborts the submission before any
// entity mutation is attempted.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload: %s: %v", e.Reason, e.Err)
	}
	return "upload: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
