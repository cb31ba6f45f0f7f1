package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/kehila-platform/kehila/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("KEHILA_ADDR")
	_ = os.Unsetenv("KEHILA_JWT_SECRET")
	_ = os.Unsetenv("KEHILA_DATABASE_PATH")
	_ = os.Unsetenv("KEHILA_BACKEND_MODE")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "kehila.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "kehila.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 1*time.Hour)
	}
	if cfg.Backend.Mode != config.ModeLocal {
		t.Fatalf("unexpected backend mode: got %q want %q", cfg.Backend.Mode, config.ModeLocal)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\nbackend:\n  mode: \"remote\"\n  base_url: \"https://platform.example.com\"\n  app_id: \"app-1\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.Backend.Mode != config.ModeRemote || cfg.Backend.BaseURL != "https://platform.example.com" {
		t.Fatalf("unexpected backend config: %+v", cfg.Backend)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	os.Setenv("KEHILA_ENV", "production")
	defer os.Unsetenv("KEHILA_ENV")

	cfg := &config.Config{
		JWTSecret: "supersecretkey",
		Backend:   config.BackendConfig{Mode: config.ModeLocal},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	os.Setenv("KEHILA_ENV", "development")
	defer os.Unsetenv("KEHILA_ENV")

	cfg := &config.Config{
		JWTSecret: "supersecretkey",
		Backend:   config.BackendConfig{Mode: config.ModeLocal},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_RemoteModeRequiresPlatform(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "strongsecret",
		Backend:   config.BackendConfig{Mode: config.ModeRemote},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without base_url in remote mode")
	}

	cfg.Backend.BaseURL = "https://platform.example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without app_id in remote mode")
	}

	cfg.Backend.AppID = "app-1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}
	if cfg.Backend.Timeout <= 0 {
		t.Fatalf("expected backend timeout default to be populated")
	}
	if cfg.SweepInterval <= 0 {
		t.Fatalf("expected sweep interval default to be populated")
	}
}

func TestValidate_UnknownMode(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "strongsecret",
		Backend:   config.BackendConfig{Mode: "hybrid"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to reject an unknown backend mode")
	}
}
