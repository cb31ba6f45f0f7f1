package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/models"
	"github.com/kehila-platform/kehila/pkg/store"
)

type ApplicationsHandler struct {
	entities  store.EntityStore
	uploader  store.Uploader
	functions store.Functions
	logger    *slog.Logger
}

func NewApplicationsHandler(entities store.EntityStore, uploader store.Uploader, functions store.Functions, logger *slog.Logger) *ApplicationsHandler {
	return &ApplicationsHandler{entities: entities, uploader: uploader, functions: functions, logger: logger}
}

// Create submits a mentor application. The optional recommendation letter is
// uploaded to access-controlled storage before the record is written.
func (h *ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, file, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	normalizeProfileFields(fields)
	fields["status"] = models.ApplicationPending

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityMentorApplication,
		Required: []string{"full_name", "email", "specialty"},
		Upload: &forms.UploadSpec{
			Field:        "letter_uri",
			Private:      true,
			AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
		},
	}, h.entities, h.uploader, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, file)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}

func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	if !sess.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	query := store.Fields{}
	if st := r.URL.Query().Get("status"); st != "" {
		query["status"] = st
	}

	apps, err := h.entities.Filter(r.Context(), store.EntityMentorApplication, query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if apps == nil {
		apps = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": apps}, http.StatusOK)
}

// Update applies an admin edit. The edit is merged over the full current
// record, so the platform always receives a complete document, and an
// approval notifies the applicant by email as a soft side effect.
func (h *ApplicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	if !sess.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	id := mux.Vars(r)["id"]

	cur, err := h.entities.Get(r.Context(), store.EntityMentorApplication, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	fields, _, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	merged := mergeFields(cur, fields)

	form := forms.Form{
		Entity:   store.EntityMentorApplication,
		Required: []string{"full_name", "email", "specialty"},
		Op:       forms.OpUpdate,
		RecordID: id,
	}
	if merged["status"] == models.ApplicationApproved && cur.Str("status") != models.ApplicationApproved {
		form.SideEffect = func(ctx context.Context, rec store.Record) error {
			_, err := h.functions.Invoke(ctx, store.FnSendEmail, map[string]any{
				"to":      rec.Str("email"),
				"subject": "Your mentor application was approved",
				"body":    fmt.Sprintf("Welcome aboard, %s!", rec.Str("full_name")),
			})
			return err
		}
	}

	ctrl := forms.NewController(form, h.entities, h.uploader, h.logger)
	res, err := ctrl.Submit(r.Context(), merged, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusOK)
}
