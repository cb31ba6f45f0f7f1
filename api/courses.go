package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/store"
)

type CoursesHandler struct {
	entities store.EntityStore
	logger   *slog.Logger
}

func NewCoursesHandler(entities store.EntityStore, logger *slog.Logger) *CoursesHandler {
	return &CoursesHandler{entities: entities, logger: logger}
}

func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := store.Fields{}
	q := r.URL.Query()
	if cat := q.Get("category"); cat != "" {
		query["category"] = cat
	}
	if lvl := q.Get("level"); lvl != "" {
		query["level"] = lvl
	}

	courses, err := h.entities.Filter(r.Context(), store.EntityCourse, query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if courses == nil {
		courses = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": courses}, http.StatusOK)
}

func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	if !canManageCourses(sess) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	fields, _, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if _, ok := fields["instructor"]; !ok {
		fields["instructor"] = sess.Name
	}

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityCourse,
		Required: []string{"title", "description"},
	}, h.entities, nil, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}

func (h *CoursesHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	if !canManageCourses(sess) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	id := mux.Vars(r)["id"]

	cur, err := h.entities.Get(r.Context(), store.EntityCourse, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	fields, _, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityCourse,
		Required: []string{"title", "description"},
		Op:       forms.OpUpdate,
		RecordID: id,
	}, h.entities, nil, h.logger)

	res, err := ctrl.Submit(r.Context(), mergeFields(cur, fields), nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusOK)
}

func canManageCourses(sess Session) bool {
	return sess.IsAdmin() || sess.UserType == "instructor"
}
