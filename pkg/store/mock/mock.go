package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kehila-platform/kehila/pkg/store"
)

// Store is an in-memory implementation of the platform capability interfaces
// used by tests. Error fields, when set, are returned by the corresponding
// operation; call counters record how often each operation was issued.
type Store struct {
	mu   sync.Mutex
	seq  int
	data map[string][]store.Record // entity -> records

	CreateErr error
	UpdateErr error
	GetErr    error
	FilterErr error
	DeleteErr error
	UploadErr error
	InvokeErr error

	CreateCalls int
	UpdateCalls int
	FilterCalls int
	UploadCalls int
	InvokeCalls int

	// Invocations records every function call in order.
	Invocations []Invocation

	// UploadURL is returned for public uploads, UploadURI for private ones.
	UploadURL string
	UploadURI string
}

type Invocation struct {
	Name    string
	Payload any
}

func New() *Store {
	return &Store{
		data:      make(map[string][]store.Record),
		UploadURL: "https://files.example.com/mock-upload",
		UploadURI: "private://mock-upload",
	}
}

var _ store.EntityStore = (*Store)(nil)
var _ store.Functions = (*Store)(nil)
var _ store.Uploader = (*Store)(nil)

func (s *Store) Create(ctx context.Context, entity string, fields store.Fields) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.seq++
	rec := store.Record{"id": fmt.Sprintf("%s-%d", entity, s.seq)}
	for k, v := range fields {
		rec[k] = v
	}
	s.data[entity] = append(s.data[entity], rec)
	return clone(rec), nil
}

func (s *Store) Update(ctx context.Context, entity, id string, fields store.Fields) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	for i, rec := range s.data[entity] {
		if rec.ID() != id {
			continue
		}
		for k, v := range fields {
			rec[k] = v
		}
		s.data[entity][i] = rec
		return clone(rec), nil
	}
	return nil, &store.NotFoundError{Entity: entity, ID: id}
}

func (s *Store) Get(ctx context.Context, entity, id string) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	for _, rec := range s.data[entity] {
		if rec.ID() == id {
			return clone(rec), nil
		}
	}
	return nil, &store.NotFoundError{Entity: entity, ID: id}
}

func (s *Store) Filter(ctx context.Context, entity string, query store.Fields) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilterCalls++
	if s.FilterErr != nil {
		return nil, s.FilterErr
	}
	var out []store.Record
	for _, rec := range s.data[entity] {
		if matches(rec, query) {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, entity, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	recs := s.data[entity]
	for i, rec := range recs {
		if rec.ID() == id {
			s.data[entity] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return &store.NotFoundError{Entity: entity, ID: id}
}

func (s *Store) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InvokeCalls++
	s.Invocations = append(s.Invocations, Invocation{Name: name, Payload: payload})
	if s.InvokeErr != nil {
		return nil, s.InvokeErr
	}
	return json.RawMessage(`{"status":"ok"}`), nil
}

func (s *Store) UploadFile(ctx context.Context, f store.File) (*store.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UploadCalls++
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	return &store.UploadResult{FileURL: s.UploadURL}, nil
}

func (s *Store) UploadPrivateFile(ctx context.Context, f store.File) (*store.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UploadCalls++
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	return &store.UploadResult{FileURI: s.UploadURI}, nil
}

// Records returns a snapshot of all stored records for an entity.
func (s *Store) Records(entity string) []store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Record, 0, len(s.data[entity]))
	for _, rec := range s.data[entity] {
		out = append(out, clone(rec))
	}
	return out
}

// Seed inserts a record as-is, without touching counters.
func (s *Store) Seed(entity string, rec store.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[entity] = append(s.data[entity], clone(rec))
}

func matches(rec store.Record, query store.Fields) bool {
	for k, want := range query {
		got, ok := rec[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func clone(rec store.Record) store.Record {
	out := make(store.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
