package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kehila-platform/kehila/pkg/store"
)

// Create validates the fields against the entity schema and stores a new
// record. The schema check is the server-side counterpart of the client's
// pre-submission required-field check.
func (s *Store) Create(ctx context.Context, entity string, fields store.Fields) (store.Record, error) {
	if err := s.validate(ctx, entity, fields); err != nil {
		return nil, err
	}

	rec := make(store.Record, len(fields)+2)
	for k, v := range fields {
		rec[k] = v
	}
	rec["id"] = uuid.NewString()
	if _, ok := rec["created_date"]; !ok {
		rec["created_date"] = nowDate()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	ts := now()
	if _, err := s.conn.Exec(ctx,
		`INSERT INTO records (id, entity, data, created, updated) VALUES (?, ?, ?, ?, ?)`,
		rec.ID(), entity, string(data), ts, ts,
	); err != nil {
		return nil, fmt.Errorf("insert %s: %w", entity, err)
	}

	return decodeDoc(string(data))
}

// Update merges the partial fields into the stored document.
func (s *Store) Update(ctx context.Context, entity, id string, fields store.Fields) (store.Record, error) {
	rec, err := s.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}

	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	if _, err := s.conn.Exec(ctx,
		`UPDATE records SET data = ?, updated = ? WHERE id = ? AND entity = ?`,
		string(data), now(), id, entity,
	); err != nil {
		return nil, fmt.Errorf("update %s: %w", entity, err)
	}

	return decodeDoc(string(data))
}

func (s *Store) Get(ctx context.Context, entity, id string) (store.Record, error) {
	row := s.conn.QueryRow(ctx, `SELECT data FROM records WHERE id = ? AND entity = ?`, id, entity)
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, &store.NotFoundError{Entity: entity, ID: id}
		}
		return nil, err
	}
	return decodeDoc(data)
}

// Filter returns records whose fields equal every query field. No ordering is
// guaranteed; callers must not rely on any.
func (s *Store) Filter(ctx context.Context, entity string, query store.Fields) ([]store.Record, error) {
	rows, err := s.conn.Query(ctx, `SELECT data FROM records WHERE entity = ?`, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decodeDoc(data)
		if err != nil {
			return nil, err
		}
		if matches(rec, query) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, entity, id string) error {
	res, err := s.conn.Exec(ctx, `DELETE FROM records WHERE id = ? AND entity = ?`, id, entity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &store.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func decodeDoc(data string) (store.Record, error) {
	var rec store.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// matches compares field values through their canonical JSON encoding so that
// query literals and round-tripped document values agree on numbers.
func matches(rec store.Record, query store.Fields) bool {
	for k, want := range query {
		got, ok := rec[k]
		if !ok {
			return false
		}
		gb, err := json.Marshal(got)
		if err != nil {
			return false
		}
		wb, err := json.Marshal(want)
		if err != nil {
			return false
		}
		if string(gb) != string(wb) {
			return false
		}
	}
	return true
}
