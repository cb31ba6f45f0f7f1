package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/kehila-platform/kehila/internal/forms"
	"github.com/kehila-platform/kehila/pkg/store"
)

type UploadsHandler struct {
	uploader store.Uploader
	logger   *slog.Logger
}

func NewUploadsHandler(uploader store.Uploader, logger *slog.Logger) *UploadsHandler {
	return &UploadsHandler{uploader: uploader, logger: logger}
}

// Upload stores a standalone file and returns its public URL, or its opaque
// URI when ?private=true. Size and content-type limits are enforced here so a
// bad file never reaches the platform.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxSubmissionMemory))
	if err != nil {
		http.Error(w, "unreadable file part", http.StatusBadRequest)
		return
	}

	file := store.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	// same guard as form attachments; anything the reader capped above is
	// still over the limit and rejected here
	if err := forms.CheckFile(&file, &forms.UploadSpec{}); err != nil {
		writeStoreError(w, err)
		return
	}

	var res *store.UploadResult
	if r.URL.Query().Get("private") == "true" {
		res, err = h.uploader.UploadPrivateFile(r.Context(), file)
	} else {
		res, err = h.uploader.UploadFile(r.Context(), file)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, res, http.StatusCreated)
}
