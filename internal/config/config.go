package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	UploadDir     string        `yaml:"upload_dir"`
	TokenDuration time.Duration `yaml:"token_duration"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Backend       BackendConfig `yaml:"backend"`
}

// BackendConfig selects between the hosted platform and the local sqlite
// backend. Remote mode requires the platform base URL and app id; the API key
// is attached once by the client core, never per call site.
type BackendConfig struct {
	Mode    string        `yaml:"mode"`
	BaseURL string        `yaml:"base_url"`
	AppID   string        `yaml:"app_id"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("KEHILA_ADDR", ":8080"),
		JWTSecret:     getEnv("KEHILA_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("KEHILA_DATABASE_PATH", "kehila.db"),
		UploadDir:     getEnv("KEHILA_UPLOAD_DIR", "uploads"),
		TokenDuration: 1 * time.Hour,
		SweepInterval: 24 * time.Hour,
		Backend: BackendConfig{
			Mode:    getEnv("KEHILA_BACKEND_MODE", ModeLocal),
			BaseURL: getEnv("KEHILA_BACKEND_URL", ""),
			AppID:   getEnv("KEHILA_BACKEND_APP_ID", ""),
			APIKey:  getEnv("KEHILA_BACKEND_API_KEY", ""),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration and fills backend defaults.
func (c *Config) Validate() error {
	if c.JWTSecret == "supersecretkey" && os.Getenv("KEHILA_ENV") != "development" {
		return fmt.Errorf("jwt_secret must be changed outside development")
	}

	switch c.Backend.Mode {
	case ModeLocal:
		// nothing else required; storage is the sqlite file
	case ModeRemote:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required in remote mode")
		}
		if c.Backend.AppID == "" {
			return fmt.Errorf("backend.app_id is required in remote mode")
		}
	default:
		return fmt.Errorf("unknown backend mode %q", c.Backend.Mode)
	}

	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 30 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 24 * time.Hour
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
