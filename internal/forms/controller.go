package forms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kehila-platform/kehila/pkg/store"
)

const defaultMaxUpload = 5 << 20

var defaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

// Controller drives one form instance through the submission state machine.
// At most one submission is in flight at a time; the busy flag guards
// re-entrancy, not rendering.
type Controller struct {
	form     Form
	entities store.EntityStore
	uploader store.Uploader
	logger   *slog.Logger

	mu         sync.Mutex
	busy       bool
	state      State
	lastFields store.Fields
}

func NewController(form Form, entities store.EntityStore, uploader store.Uploader, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		form:     form,
		entities: entities,
		uploader: uploader,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastFields returns the payload of the last failed submission, preserved so
// the user can resubmit without retyping. Nil after a success.
func (c *Controller) LastFields() store.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFields
}

// Submit runs the workflow once: validate, optionally upload, mutate, side
// effect. The mutation is pessimistic (no local echo before the round trip)
// and never retried.
func (c *Controller) Submit(ctx context.Context, fields store.Fields, file *store.File) (*Result, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.busy = true
	c.state = StateValidating
	c.mu.Unlock()

	res, err := c.run(ctx, fields, file)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		if store.IsValidation(err) {
			// no network call was issued; the form stays editable
			c.state = StateIdle
		} else {
			c.state = StateFailed
		}
		c.lastFields = fields
	} else {
		c.state = StateSucceeded
		c.lastFields = nil
	}
	c.mu.Unlock()

	return res, err
}

func (c *Controller) run(ctx context.Context, fields store.Fields, file *store.File) (*Result, error) {
	if missing := missingRequired(fields, c.form.Required); len(missing) > 0 {
		return nil, &store.ValidationError{Entity: c.form.Entity, Missing: missing}
	}

	payload := make(store.Fields, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}

	if file != nil {
		if c.form.Upload == nil {
			return nil, &store.UploadError{Reason: "form does not accept attachments"}
		}
		if err := CheckFile(file, c.form.Upload); err != nil {
			return nil, err
		}

		c.setState(StateUploading)
		var (
			res *store.UploadResult
			err error
		)
		if c.form.Upload.Private {
			res, err = c.uploader.UploadPrivateFile(ctx, *file)
		} else {
			res, err = c.uploader.UploadFile(ctx, *file)
		}
		if err != nil {
			// abort before any entity mutation; an already-stored file stays
			// orphaned (no compensation)
			return nil, err
		}
		// the payload reference always comes from the upload response, never
		// from the local file
		if c.form.Upload.Private {
			payload[c.form.Upload.Field] = res.FileURI
		} else {
			payload[c.form.Upload.Field] = res.FileURL
		}
	}

	c.setState(StateSubmitting)
	var (
		rec store.Record
		err error
	)
	switch c.form.Op {
	case OpUpdate:
		rec, err = c.entities.Update(ctx, c.form.Entity, c.form.RecordID, payload)
	default:
		rec, err = c.entities.Create(ctx, c.form.Entity, payload)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Record: rec}
	if c.form.SideEffect != nil {
		if seErr := c.form.SideEffect(ctx, rec); seErr != nil {
			c.logger.Warn("submission side effect failed",
				slog.String("entity", c.form.Entity),
				slog.String("record", rec.ID()),
				slog.Any("err", seErr),
			)
			result.Warning = seErr.Error()
		}
	}
	return result, nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// missingRequired reports required fields that are absent or blank.
func missingRequired(fields store.Fields, required []string) []string {
	var missing []string
	for _, key := range required {
		v, ok := fields[key]
		if !ok || isBlank(v) {
			missing = append(missing, key)
		}
	}
	return missing
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

// CheckFile enforces an upload spec's size and content-type limits. Zero
// values fall back to the 5MB / images-and-PDF defaults. Exposed so the
// standalone upload endpoint applies the same guard as form attachments.
func CheckFile(f *store.File, spec *UploadSpec) error {
	maxSize := spec.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxUpload
	}
	if int64(len(f.Data)) > maxSize {
		return &store.UploadError{Reason: fmt.Sprintf("file exceeds %d bytes", maxSize)}
	}

	allowed := spec.AllowedTypes
	if len(allowed) == 0 {
		allowed = defaultAllowedTypes
	}
	for _, ct := range allowed {
		if f.ContentType == ct {
			return nil
		}
	}
	return &store.UploadError{Reason: fmt.Sprintf("unsupported content type %q", f.ContentType)}
}
