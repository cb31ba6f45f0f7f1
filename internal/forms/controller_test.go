package forms_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/store"
	"github.com/kehila-platform/kehila/pkg/store/mock"
)

func TestSubmitMissingFieldsNeverReachesStore(t *testing.T) {
	m := mock.New()
	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityCommunityPost,
		Required: []string{"title", "content", "category"},
	}, m, m, nil)

	cases := []struct {
		name    string
		fields  store.Fields
		missing int
	}{
		{"all absent", store.Fields{}, 3},
		{"blank string counts as missing", store.Fields{"title": "  ", "content": "text", "category": "advice"}, 1},
		{"nil value counts as missing", store.Fields{"title": nil, "content": "text", "category": "advice"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ctrl.Submit(context.Background(), tc.fields, nil)
			var ve *store.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Missing) != tc.missing {
				t.Fatalf("expected %d missing fields, got %v", tc.missing, ve.Missing)
			}
			if m.CreateCalls != 0 {
				t.Fatalf("validation failure must not reach the store, got %d creates", m.CreateCalls)
			}
			if ctrl.State() != forms.StateIdle {
				t.Fatalf("expected idle after validation failure, got %v", ctrl.State())
			}
		})
	}
}

func TestSubmitCreatesPost(t *testing.T) {
	m := mock.New()
	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityCommunityPost,
		Required: []string{"title", "content", "category"},
	}, m, m, nil)

	res, err := ctrl.Submit(context.Background(), store.Fields{
		"title":    "כותרת",
		"content":  "תוכן",
		"category": "עצה",
	}, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Record.Str("title") != "כותרת" {
		t.Fatalf("unexpected title %q", res.Record.Str("title"))
	}
	if ctrl.State() != forms.StateSucceeded {
		t.Fatalf("expected succeeded, got %v", ctrl.State())
	}
	if ctrl.LastFields() != nil {
		t.Fatal("success must clear the preserved payload")
	}
	if got := len(m.Records(store.EntityCommunityPost)); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}

func TestSubmitUploadHappensBeforeMutation(t *testing.T) {
	m := mock.New()
	m.UploadErr = &store.UploadError{Reason: "storage unavailable"}
	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityMentorProfile,
		Required: []string{"name"},
		Upload:   &forms.UploadSpec{Field: "image_url"},
	}, m, m, nil)

	file := &store.File{Name: "photo.png", ContentType: "image/png", Data: []byte("png")}
	_, err := ctrl.Submit(context.Background(), store.Fields{"name": "Ruth"}, file)
	if !errors.As(err, new(*store.UploadError)) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if m.CreateCalls != 0 {
		t.Fatal("failed upload must abort before the entity mutation")
	}
	if ctrl.State() != forms.StateFailed {
		t.Fatalf("expected failed, got %v", ctrl.State())
	}
	if ctrl.LastFields() == nil {
		t.Fatal("failure must preserve the payload for resubmission")
	}
}

func TestSubmitMergesUploadReference(t *testing.T) {
	file := &store.File{Name: "letter.pdf", ContentType: "application/pdf", Data: []byte("pdf")}

	t.Run("public", func(t *testing.T) {
		m := mock.New()
		ctrl := forms.NewController(forms.Form{
			Entity:   store.EntityMentorProfile,
			Required: []string{"name"},
			Upload:   &forms.UploadSpec{Field: "image_url"},
		}, m, m, nil)

		res, err := ctrl.Submit(context.Background(), store.Fields{"name": "Ruth"}, file)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if res.Record.Str("image_url") != m.UploadURL {
			t.Fatalf("expected upload URL merged into payload, got %q", res.Record.Str("image_url"))
		}
	})

	t.Run("private", func(t *testing.T) {
		m := mock.New()
		ctrl := forms.NewController(forms.Form{
			Entity:   store.EntityMentorApplication,
			Required: []string{"full_name"},
			Upload:   &forms.UploadSpec{Field: "letter_uri", Private: true},
		}, m, m, nil)

		res, err := ctrl.Submit(context.Background(), store.Fields{"full_name": "Ruth"}, file)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if res.Record.Str("letter_uri") != m.UploadURI {
			t.Fatalf("expected private URI merged into payload, got %q", res.Record.Str("letter_uri"))
		}
	})
}

func TestSubmitRejectsUnexpectedAttachment(t *testing.T) {
	m := mock.New()
	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityCommunityPost,
		Required: []string{"title"},
	}, m, m, nil)

	file := &store.File{Name: "x.png", ContentType: "image/png", Data: []byte("png")}
	_, err := ctrl.Submit(context.Background(), store.Fields{"title": "t"}, file)
	if !errors.As(err, new(*store.UploadError)) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if m.UploadCalls != 0 || m.CreateCalls != 0 {
		t.Fatal("nothing should be stored for a form without an upload slot")
	}
}

func TestSubmitChecksFileLimits(t *testing.T) {
	cases := []struct {
		name string
		file store.File
	}{
		{"oversized", store.File{Name: "big.png", ContentType: "image/png", Data: make([]byte, 6<<20)}},
		{"bad type", store.File{Name: "x.exe", ContentType: "application/octet-stream", Data: []byte("x")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mock.New()
			ctrl := forms.NewController(forms.Form{
				Entity:   store.EntityMentorProfile,
				Required: []string{"name"},
				Upload:   &forms.UploadSpec{Field: "image_url"},
			}, m, m, nil)

			_, err := ctrl.Submit(context.Background(), store.Fields{"name": "Ruth"}, &tc.file)
			if !errors.As(err, new(*store.UploadError)) {
				t.Fatalf("expected UploadError, got %v", err)
			}
			if m.UploadCalls != 0 {
				t.Fatal("rejected file must not be uploaded")
			}
		})
	}
}

func TestSubmitSideEffectFailureIsSoft(t *testing.T) {
	m := mock.New()
	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityMentorProfile,
		Required: []string{"name"},
		SideEffect: func(ctx context.Context, rec store.Record) error {
			return fmt.Errorf("promotion failed")
		},
	}, m, m, nil)

	res, err := ctrl.Submit(context.Background(), store.Fields{"name": "Ruth"}, nil)
	if err != nil {
		t.Fatalf("side effect failure must not fail the submission: %v", err)
	}
	if res.Warning == "" {
		t.Fatal("expected a warning from the failed side effect")
	}
	if got := len(m.Records(store.EntityMentorProfile)); got != 1 {
		t.Fatalf("record must not be rolled back, got %d records", got)
	}
	if ctrl.State() != forms.StateSucceeded {
		t.Fatalf("expected succeeded, got %v", ctrl.State())
	}
}

// blockingStore parks Create until released so a second submission can be
// issued while the first is in flight.
type blockingStore struct {
	*mock.Store
	entered  chan struct{}
	released chan struct{}
}

func (b *blockingStore) Create(ctx context.Context, entity string, fields store.Fields) (store.Record, error) {
	close(b.entered)
	<-b.released
	return b.Store.Create(ctx, entity, fields)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	bs := &blockingStore{
		Store:    mock.New(),
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityGoal,
		Required: []string{"title"},
	}, bs, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background(), store.Fields{"title": "walk daily"}, nil)
		done <- err
	}()

	<-bs.entered
	_, err := ctrl.Submit(context.Background(), store.Fields{"title": "second"}, nil)
	if !errors.Is(err, forms.ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(bs.released)
	if err := <-done; err != nil {
		t.Fatalf("first submission should succeed: %v", err)
	}
	if got := len(bs.Records(store.EntityGoal)); got != 1 {
		t.Fatalf("expected exactly one record, got %d", got)
	}
}
