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

type AppointmentsHandler struct {
	entities  store.EntityStore
	functions store.Functions
	logger    *slog.Logger
}

func NewAppointmentsHandler(entities store.EntityStore, functions store.Functions, logger *slog.Logger) *AppointmentsHandler {
	return &AppointmentsHandler{entities: entities, functions: functions, logger: logger}
}

// Create books a session with a mentor. The booking starts pending approval;
// the mentor is notified best-effort.
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	fields, _, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	fields["user_name"] = sess.Name
	fields["user_email"] = sess.Email
	fields["status"] = models.AppointmentPending

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityAppointment,
		Required: []string{"mentor_name", "user_name", "user_email"},
		SideEffect: func(ctx context.Context, rec store.Record) error {
			return h.notifyMentor(ctx, rec)
		},
	}, h.entities, nil, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}

// List returns the caller's bookings, or the bookings addressed to her when
// she is a mentor.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	query := store.Fields{"user_email": sess.Email}
	if sess.UserType == "mentor" && r.URL.Query().Get("as_mentor") == "true" {
		query = store.Fields{"mentor_name": sess.Name}
	}

	appts, err := h.entities.Filter(r.Context(), store.EntityAppointment, query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if appts == nil {
		appts = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": appts}, http.StatusOK)
}

func (h *AppointmentsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AppointmentApproved)
}

func (h *AppointmentsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AppointmentRejected)
}

// transition moves a booking out of pending_approval and emails the member
// best-effort.
func (h *AppointmentsHandler) transition(w http.ResponseWriter, r *http.Request, status string) {
	sess, _ := SessionFromContext(r.Context())
	if sess.UserType != "mentor" && !sess.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	id := mux.Vars(r)["id"]

	cur, err := h.entities.Get(r.Context(), store.EntityAppointment, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sess.UserType == "mentor" && cur.Str("mentor_name") != sess.Name {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	rec, err := h.entities.Update(r.Context(), store.EntityAppointment, id, store.Fields{"status": status})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	warning := ""
	if _, err := h.functions.Invoke(r.Context(), store.FnSendEmail, map[string]any{
		"to":      rec.Str("user_email"),
		"subject": fmt.Sprintf("Your session with %s was %s", rec.Str("mentor_name"), status),
		"body":    rec.Str("user_message"),
	}); err != nil {
		h.logger.Warn("booking email failed", slog.String("appointment", id), slog.Any("err", err))
		warning = err.Error()
	}

	writeJSON(w, submissionResponse{Record: rec, Warning: warning}, http.StatusOK)
}

// notifyMentor looks up the mentor's contact email by profile name and sends
// a notification.
func (h *AppointmentsHandler) notifyMentor(ctx context.Context, rec store.Record) error {
	mentors, err := h.entities.Filter(ctx, store.EntityMentorProfile, store.Fields{"name": rec.Str("mentor_name")})
	if err != nil {
		return err
	}
	if len(mentors) == 0 {
		return fmt.Errorf("no mentor profile named %q", rec.Str("mentor_name"))
	}

	_, err = h.functions.Invoke(ctx, store.FnSendNotification, map[string]any{
		"user_email": mentors[0].Str("email"),
		"message":    fmt.Sprintf("%s requested a session", rec.Str("user_name")),
	})
	return err
}
