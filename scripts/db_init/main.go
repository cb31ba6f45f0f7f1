package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/kehila-platform/kehila/db"
	"github.com/kehila-platform/kehila/internal/config"
	"github.com/kehila-platform/kehila/internal/db"
	"github.com/kehila-platform/kehila/internal/localstore"
	"github.com/kehila-platform/kehila/pkg/store"
)

// db_init creates the database schema and seeds an admin account when
// KEHILA_ADMIN_EMAIL and KEHILA_ADMIN_PASSWORD are set.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	email := os.Getenv("KEHILA_ADMIN_EMAIL")
	password := os.Getenv("KEHILA_ADMIN_PASSWORD")
	if email != "" && password != "" {
		ls := localstore.New(database, nil, localstore.Options{
			JWTSecret: cfg.JWTSecret,
			UploadDir: cfg.UploadDir,
		})
		rec, err := ls.Register(ctx, email, password, store.Fields{"full_name": "Administrator"})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Admin seed error: %v\n", err)
			os.Exit(1)
		}
		if _, err := ls.Update(ctx, store.EntityUser, rec.ID(), store.Fields{"user_type": "admin"}); err != nil {
			fmt.Fprintf(os.Stderr, "Admin seed error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Admin account %s created.\n", email)
	}

	fmt.Println("Database initialized successfully.")
}
