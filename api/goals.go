package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/models"
	"github.com/kehila-platform/kehila/pkg/store"
)

type GoalsHandler struct {
	entities  store.EntityStore
	functions store.Functions
	logger    *slog.Logger
}

func NewGoalsHandler(entities store.EntityStore, functions store.Functions, logger *slog.Logger) *GoalsHandler {
	return &GoalsHandler{entities: entities, functions: functions, logger: logger}
}

// List returns the caller's goals only.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	goals, err := h.entities.Filter(r.Context(), store.EntityGoal, store.Fields{"created_by": sess.Email})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if goals == nil {
		goals = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": goals}, http.StatusOK)
}

func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	fields, _, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	fields["created_by"] = sess.Email
	fields["status"] = models.GoalActive
	fields["progress"] = 0

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityGoal,
		Required: []string{"title"},
	}, h.entities, nil, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}

// UpdateProgress moves a goal forward. Reaching 100 completes the goal and
// triggers a best-effort badge re-evaluation.
func (h *GoalsHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	id := mux.Vars(r)["id"]

	cur, err := h.entities.Get(r.Context(), store.EntityGoal, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if cur.Str("created_by") != sess.Email {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Progress *int     `json:"progress,omitempty"`
		Current  *float64 `json:"current,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	// an omitted progress keeps the stored value, so a current-only update
	// cannot reset it
	progress := cur.Int("progress")
	if req.Progress != nil {
		progress = *req.Progress
	}
	progress = models.ClampProgress(progress)
	fields := store.Fields{"progress": progress}
	if req.Current != nil {
		fields["current"] = *req.Current
	}

	completing := progress >= 100 && cur.Str("status") != models.GoalCompleted
	if completing {
		fields["status"] = models.GoalCompleted
	}

	form := forms.Form{
		Entity:   store.EntityGoal,
		Required: []string{"title"},
		Op:       forms.OpUpdate,
		RecordID: id,
	}
	if completing {
		form.SideEffect = func(ctx context.Context, rec store.Record) error {
			_, err := h.functions.Invoke(ctx, store.FnAwardBadges, map[string]any{
				"user_email": sess.Email,
			})
			return err
		}
	}

	ctrl := forms.NewController(form, h.entities, nil, h.logger)
	res, err := ctrl.Submit(r.Context(), mergeFields(cur, fields), nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusOK)
}
