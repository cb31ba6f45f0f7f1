package api_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/kehila-platform/kehila/api"
	"github.com/kehila-platform/kehila/pkg/store/mock"
)

func multipartFileRequest(t *testing.T, target, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadEndpointStoresFile(t *testing.T) {
	m := mock.New()
	h := api.NewUploadsHandler(m, nil)

	rr := httptest.NewRecorder()
	h.Upload(rr, multipartFileRequest(t, "/v1/uploads", "photo.jpg", "image/jpeg", []byte("jpeg bytes")))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if m.UploadCalls != 1 {
		t.Fatalf("expected one upload call, got %d", m.UploadCalls)
	}
	if !strings.Contains(rr.Body.String(), "file_url") {
		t.Fatalf("expected a file_url in the response, got %s", rr.Body.String())
	}
}

func TestUploadEndpointRejectsOversizedFile(t *testing.T) {
	m := mock.New()
	h := api.NewUploadsHandler(m, nil)

	big := bytes.Repeat([]byte("x"), 9<<20)
	rr := httptest.NewRecorder()
	h.Upload(rr, multipartFileRequest(t, "/v1/uploads", "huge.jpg", "image/jpeg", big))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized file, got %d", rr.Code)
	}
	if m.UploadCalls != 0 {
		t.Fatalf("oversized file must not reach the uploader, got %d calls", m.UploadCalls)
	}
}

func TestUploadEndpointRejectsUnsupportedType(t *testing.T) {
	m := mock.New()
	h := api.NewUploadsHandler(m, nil)

	rr := httptest.NewRecorder()
	h.Upload(rr, multipartFileRequest(t, "/v1/uploads", "tool.exe", "application/octet-stream", []byte("MZ")))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported type, got %d", rr.Code)
	}
	if m.UploadCalls != 0 {
		t.Fatalf("unsupported file must not reach the uploader, got %d calls", m.UploadCalls)
	}
}

func TestUploadEndpointPrivateFlag(t *testing.T) {
	m := mock.New()
	h := api.NewUploadsHandler(m, nil)

	rr := httptest.NewRecorder()
	h.Upload(rr, multipartFileRequest(t, "/v1/uploads?private=true", "letter.pdf", "application/pdf", []byte("%PDF")))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "file_uri") {
		t.Fatalf("expected a file_uri for a private upload, got %s", rr.Body.String())
	}
}
