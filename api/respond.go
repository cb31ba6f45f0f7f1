package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/kehila-platform/kehila/pkg/store"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// writeStoreError maps the store error taxonomy onto HTTP statuses. Remote
// failures stay opaque; the platform-supplied message is passed through.
func writeStoreError(w http.ResponseWriter, err error) {
	var (
		ve *store.ValidationError
		nf *store.NotFoundError
		ue *store.UploadError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, map[string]any{"error": "missing required fields", "missing": ve.Missing}, http.StatusBadRequest)
	case errors.As(err, &nf):
		http.Error(w, nf.Error(), http.StatusNotFound)
	case errors.As(err, &ue):
		http.Error(w, ue.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotSignedIn):
		http.Error(w, "sign in required", http.StatusUnauthorized)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

// submissionResponse wraps a persisted record together with any soft
// side-effect warning.
type submissionResponse struct {
	Record  store.Record `json:"record"`
	Warning string       `json:"warning,omitempty"`
}

const maxSubmissionMemory = 8 << 20

// readSubmission decodes a form submission from either a JSON body or a
// multipart form. Multipart values become string fields and the optional
// "file" part becomes the attachment.
func readSubmission(r *http.Request) (store.Fields, *store.File, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		var fields store.Fields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, nil, err
		}
		return fields, nil, nil
	}

	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		return nil, nil, err
	}
	fields := store.Fields{}
	for key, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}

	file, hdr, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return fields, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return fields, &store.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
