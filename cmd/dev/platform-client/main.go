package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kehila-platform/kehila/internal/config"
	"github.com/kehila-platform/kehila/pkg/backend"
	"github.com/kehila-platform/kehila/pkg/store"
)

// Smoke client for the platform SDK: lists mentors and community posts
// against a live backend.
func main() {
	ctx := context.Background()

	client, err := backend.NewDefaultClient(config.BackendConfig{
		BaseURL: envOr("KEHILA_BACKEND_URL", "http://localhost:3000"),
		AppID:   envOr("KEHILA_BACKEND_APP_ID", "kehila-dev"),
		APIKey:  os.Getenv("KEHILA_BACKEND_API_KEY"),
		Timeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	mentors, err := client.Filter(ctx, store.EntityMentorProfile, store.Fields{})
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range mentors {
		fmt.Printf("mentor %s: %s (%s)\n", m.ID(), m.Str("name"), m.Str("specialty"))
	}

	posts, err := client.Filter(ctx, store.EntityCommunityPost, store.Fields{})
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range posts {
		fmt.Printf("post %s: %s\n", p.ID(), p.Str("title"))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
