package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kehila-platform/kehila/internal/community"
	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/store"
)

type PostsHandler struct {
	entities  store.EntityStore
	community *community.Service
	logger    *slog.Logger
}

func NewPostsHandler(entities store.EntityStore, communitySvc *community.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{entities: entities, community: communitySvc, logger: logger}
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := store.Fields{}
	if cat := r.URL.Query().Get("category"); cat != "" {
		query["category"] = cat
	}

	posts, err := h.entities.Filter(r.Context(), store.EntityCommunityPost, query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if posts == nil {
		posts = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": posts}, http.StatusOK)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	fields, _, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	fields["author_name"] = sess.Name
	fields["created_by"] = sess.Email

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityCommunityPost,
		Required: []string{"title", "content", "category"},
	}, h.entities, nil, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}

func (h *PostsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	postID := mux.Vars(r)["id"]

	liked, err := h.community.ToggleLike(r.Context(), postID, sess.Email, sess.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]any{"liked": liked}, http.StatusOK)
}

func (h *PostsHandler) ListLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := h.community.ListLikes(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]any{"items": likes}, http.StatusOK)
}

func (h *PostsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	postID := mux.Vars(r)["id"]

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	rec, err := h.community.AddComment(r.Context(), postID, sess.Email, sess.Name, req.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, rec, http.StatusCreated)
}

func (h *PostsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.community.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]any{"items": comments}, http.StatusOK)
}
