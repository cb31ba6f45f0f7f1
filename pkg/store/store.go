package store

import (
	"context"
	"encoding/json"
)

// Capability interfaces for the hosted community platform. These are the
// public contracts consumers should depend on; concrete implementations live
// under pkg/backend (hosted platform) and internal/localstore (local sqlite).

// Entity names as registered on the platform.
const (
	EntityUser              = "User"
	EntityMentorProfile     = "MentorProfile"
	EntityMentorApplication = "MentorApplication"
	EntityCourse            = "Course"
	EntityCommunityPost     = "CommunityPost"
	EntityLike              = "Like"
	EntityComment           = "Comment"
	EntityGoal              = "Goal"
	EntityAppointment       = "Appointment"
	EntityArticle           = "Article"
	EntityNotification      = "Notification"
)

// Server-side function names as deployed on the platform.
const (
	FnSendEmail           = "sendEmail"
	FnSendNotification    = "sendNotification"
	FnAwardBadges         = "awardBadges"
	FnExpireSubscriptions = "checkExpiredSubscriptions"
	FnModerateContent     = "moderateContent"
)

// Fields holds entity attributes as sent to the backend.
type Fields map[string]any

// Record is a persisted entity record as returned by the backend. Every
// stored record carries a string "id".
type Record map[string]any

// ID returns the record identifier, or "" when absent.
func (r Record) ID() string {
	if v, ok := r["id"].(string); ok {
		return v
	}
	return ""
}

// Str returns a string field value, or "" when absent or not a string.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int returns a numeric field value truncated to int, 0 when absent. JSON
// round trips store numbers as float64.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns a boolean field value, false when absent.
func (r Record) Bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}

// DecodeRecord round-trips a record through JSON into a typed model.
func DecodeRecord(r Record, v any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// EncodeFields converts a typed model into Fields via JSON.
func EncodeFields(v any) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// EntityStore is the uniform CRUD contract every entity is accessed through.
// Filter returns matching records in no guaranteed order; the result is
// one-shot and finite.
type EntityStore interface {
	Create(ctx context.Context, entity string, fields Fields) (Record, error)
	Update(ctx context.Context, entity, id string, fields Fields) (Record, error)
	Get(ctx context.Context, entity, id string) (Record, error)
	Filter(ctx context.Context, entity string, query Fields) ([]Record, error)
	Delete(ctx context.Context, entity, id string) error
}

// Functions invokes a named server-side function with an opaque payload.
// Calls are not retried and failures are not classified; callers must treat
// every error as non-retryable within the current interaction.
type Functions interface {
	Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error)
}

// File is an attachment submitted for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult carries the stored location of an uploaded file. FileURL is
// set for public uploads, FileURI for access-controlled ones.
type UploadResult struct {
	FileURL string `json:"file_url,omitempty"`
	FileURI string `json:"file_uri,omitempty"`
}

// Uploader stores binary attachments ahead of the entity mutation that will
// reference them.
type Uploader interface {
	UploadFile(ctx context.Context, f File) (*UploadResult, error)
	UploadPrivateFile(ctx context.Context, f File) (*UploadResult, error)
}

// Session is an authenticated platform session.
type Session struct {
	Token string `json:"token"`
	User  Record `json:"user"`
}

// Auth is the platform auth surface. Session tokens are threaded explicitly;
// there is no ambient current-user state.
type Auth interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, token string) (Record, error)
	UpdateMe(ctx context.Context, token string, fields Fields) (Record, error)
}

// Backend bundles the full platform surface.
type Backend interface {
	EntityStore
	Functions
	Uploader
	Auth
}

// Registrar is implemented by backends that own user credentials themselves
// (the local development backend); the hosted platform manages signup out of
// band.
type Registrar interface {
	Register(ctx context.Context, email, password string, fields Fields) (Record, error)
}
