package localstore

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/kehila-platform/kehila/pkg/store"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type entitySchema struct {
	rs       *jsonschema.Schema
	required []string
}

var (
	schemasOnce sync.Once
	schemas     map[string]*entitySchema
	schemasErr  error
)

// loadSchemas compiles the embedded entity schemas once. File names double as
// entity names (schemas/CommunityPost.json validates CommunityPost records).
func loadSchemas() (map[string]*entitySchema, error) {
	schemasOnce.Do(func() {
		out := make(map[string]*entitySchema)
		entries, err := fs.ReadDir(schemaFS, "schemas")
		if err != nil {
			schemasErr = fmt.Errorf("read schemas dir: %w", err)
			return
		}
		for _, e := range entries {
			name := e.Name()
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			b, err := fs.ReadFile(schemaFS, "schemas/"+name)
			if err != nil {
				schemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			rs := &jsonschema.Schema{}
			if err := json.Unmarshal(b, rs); err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			var meta struct {
				Required []string `json:"required"`
			}
			if err := json.Unmarshal(b, &meta); err != nil {
				schemasErr = fmt.Errorf("parse schema %s: %w", name, err)
				return
			}
			entity := strings.TrimSuffix(name, ".json")
			out[entity] = &entitySchema{rs: rs, required: meta.Required}
		}
		schemas = out
	})
	return schemas, schemasErr
}

// validate checks fields against the entity's schema. Entities without a
// registered schema are accepted as-is.
func (s *Store) validate(ctx context.Context, entity string, fields store.Fields) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	es, ok := all[entity]
	if !ok {
		return nil
	}

	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	verrs, err := es.rs.ValidateBytes(ctx, b)
	if err != nil {
		return fmt.Errorf("validate %s: %w", entity, err)
	}
	if len(verrs) == 0 {
		return nil
	}

	// Report the offending required fields by name; fall back to the raw
	// schema messages for non-required violations.
	var missing []string
	for _, req := range es.required {
		v, ok := fields[req]
		if !ok || isBlank(v) {
			missing = append(missing, req)
		}
	}
	if len(missing) == 0 {
		for _, ve := range verrs {
			missing = append(missing, ve.Message)
		}
	}
	return &store.ValidationError{Entity: entity, Missing: missing}
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
