package api

import (
	"log/slog"
	"net/http"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/store"
)

type ArticlesHandler struct {
	entities store.EntityStore
	uploader store.Uploader
	logger   *slog.Logger
}

func NewArticlesHandler(entities store.EntityStore, uploader store.Uploader, logger *slog.Logger) *ArticlesHandler {
	return &ArticlesHandler{entities: entities, uploader: uploader, logger: logger}
}

func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := store.Fields{}
	if cat := r.URL.Query().Get("category"); cat != "" {
		query["category"] = cat
	}

	articles, err := h.entities.Filter(r.Context(), store.EntityArticle, query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if articles == nil {
		articles = []store.Record{}
	}
	writeJSON(w, map[string]any{"items": articles}, http.StatusOK)
}

func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	fields, file, err := readSubmission(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if _, ok := fields["author_name"]; !ok {
		fields["author_name"] = sess.Name
	}

	ctrl := forms.NewController(forms.Form{
		Entity:   store.EntityArticle,
		Required: []string{"title", "content"},
		Upload:   &forms.UploadSpec{Field: "image_url"},
	}, h.entities, h.uploader, h.logger)

	res, err := ctrl.Submit(r.Context(), fields, file)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, submissionResponse{Record: res.Record, Warning: res.Warning}, http.StatusCreated)
}
