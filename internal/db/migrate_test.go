package db_test

import (
	"context"
	"testing"

	dbfs "github.com/kehila-platform/kehila/db"
	"github.com/kehila-platform/kehila/internal/db"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, "file:migrate_test?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	// a second run must skip already-applied versions
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one applied migration")
	}

	// the schema is usable
	if _, err := d.Exec(ctx, `INSERT INTO records (id, entity, data, created, updated) VALUES ('r1', 'Course', '{}', 0, 0)`); err != nil {
		t.Fatalf("insert into migrated schema: %v", err)
	}
}
