package backend

import (
	"net/http"
	"testing"

	"github.com/kehila-platform/kehila/internal/config"
)

func TestClient_Close_Idempotent(t *testing.T) {
	cfg := config.BackendConfig{BaseURL: "http://localhost:3000", AppID: "app"}
	c, err := NewClient(cfg, &http.Client{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(config.BackendConfig{BaseURL: "://bad", AppID: "app"}, nil); err == nil {
		t.Fatal("expected error for invalid base url")
	}
	if _, err := NewClient(config.BackendConfig{BaseURL: "http://localhost:3000"}, nil); err == nil {
		t.Fatal("expected error for missing app id")
	}
}
