package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/models"
	"github.com/kehila-platform/kehila/pkg/store"
)

type MentorsHandler struct {
	entities store.EntityStore
	uploader store.Uploader
	logger   *slog.Logger
}

func NewMentorsHandler(entities store.EntityStore, uploader store.Uploader, logger *slog.Logger) *MentorsHandler {
	return &MentorsHandler{entities: entities, uploader: uploader, logger: logger}
}

func (h *MentorsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := store.Fields{}
	if sp := r.URL.Query().Get("specialty"); sp != "" {
		query["specialty"] = sp
	}

	mentors, err := h.entities.Filter(r.Context(), store.EntityMentorProfile, query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if mentors == nil {
		mentors = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": mentors}, http.StatusOK)
}

// Create persists a mentor profile and then promotes the matching user to
// mentor. The promotion is a soft side effect: its failure is reported as a
// warning and never reverts the profile.
func (h *MentorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, file, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	normalizeProfileFields(fields)

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityMentorProfile,
		Required: []string{"name", "email", "specialty", "description"},
		Upload:   &forms.UploadSpec{Field: "image_url"},
		SideEffect: func(ctx context.Context, rec store.Record) error {
			return h.promoteUser(ctx, rec)
		},
	}, h.entities, h.uploader, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, file)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}

func (h *MentorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	id := mux.Vars(r)["id"]

	cur, err := h.entities.Get(r.Context(), store.EntityMentorProfile, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !sess.IsAdmin() && cur.Str("email") != sess.Email {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	fields, file, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	normalizeProfileFields(fields)

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityMentorProfile,
		Required: []string{"name", "email", "specialty", "description"},
		Op:       forms.OpUpdate,
		RecordID: id,
		Upload:   &forms.UploadSpec{Field: "image_url"},
	}, h.entities, h.uploader, h.logger)

	res, err := ctrl.Submit(r.Context(), mergeFields(cur, fields), file)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusOK)
}

// promoteUser links the new profile to the User record sharing its contact
// email and flips the role flags.
func (h *MentorsHandler) promoteUser(ctx context.Context, rec store.Record) error {
	email := rec.Str("email")
	users, err := h.entities.Filter(ctx, store.EntityUser, store.Fields{"email": email})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("no user record for %s", email)
	}

	_, err = h.entities.Update(ctx, store.EntityUser, users[0].ID(), store.Fields{
		"user_type":          "mentor",
		"is_approved_mentor": true,
		"mentor_id":          rec.ID(),
	})
	return err
}

// normalizeProfileFields cleans the array-shaped inputs: comma-separated
// focus areas and endorsement entries missing author or text are dropped
// before persistence.
func normalizeProfileFields(fields store.Fields) {
	if raw, ok := fields["focus_areas"].(string); ok {
		fields["focus_areas"] = models.SplitList(raw)
	}

	switch raw := fields["recommendations"].(type) {
	case string:
		var recs []models.Recommendation
		if err := json.Unmarshal([]byte(raw), &recs); err == nil {
			fields["recommendations"] = models.FilterRecommendations(recs)
		} else {
			delete(fields, "recommendations")
		}
	case []any:
		b, err := json.Marshal(raw)
		if err != nil {
			delete(fields, "recommendations")
			return
		}
		var recs []models.Recommendation
		if err := json.Unmarshal(b, &recs); err == nil {
			fields["recommendations"] = models.FilterRecommendations(recs)
		} else {
			delete(fields, "recommendations")
		}
	}
}

// mergeFields lays the partial edit over the full current record so updates
// always carry every field.
func mergeFields(cur store.Record, edit store.Fields) store.Fields {
	out := make(store.Fields, len(cur)+len(edit))
	for k, v := range cur {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	for k, v := range edit {
		out[k] = v
	}
	return out
}
