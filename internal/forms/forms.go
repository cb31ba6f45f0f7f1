// Package forms implements the submission workflow shared by every form in
// the platform: validate required fields, optionally upload an attachment,
// issue exactly one entity create or update, then run a best-effort side
// effect. One parametrized controller replaces the per-screen copies of this
// state machine.
package forms

import (
	"context"
	"errors"

	"github.com/kehila-platform/kehila/pkg/store"
)

// State of a submission controller.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation selects the entity mutation a form performs.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not resolved. The second call is a no-op: no network
// activity is issued.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// UploadSpec configures the optional attachment step of a form.
type UploadSpec struct {
	// Field is the payload key that receives the uploaded file reference.
	Field string
	// Private routes the file to access-controlled storage; the payload then
	// carries the file URI instead of a public URL.
	Private bool
	// MaxSize in bytes; 0 means the 5MB default.
	MaxSize int64
	// AllowedTypes limits accepted content types; empty means images and PDF.
	AllowedTypes []string
}

// Form is the static configuration of one submission flow.
type Form struct {
	Entity   string
	Required []string
	Op       Operation
	// RecordID identifies the target record for OpUpdate.
	RecordID string
	Upload   *UploadSpec
	// SideEffect runs after a successful mutation. Its failure is logged and
	// reported as a warning, never rolled back and never failing the
	// submission.
	SideEffect func(ctx context.Context, rec store.Record) error
}

// Result of a successful submission.
type Result struct {
	Record store.Record
	// Warning carries a soft side-effect failure, empty otherwise.
	Warning string
}
