package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kehila-platform/kehila/api"
	dbfs "github.com/kehila-platform/kehila/db"
	"github.com/kehila-platform/kehila/internal/config"
	"github.com/kehila-platform/kehila/internal/db"
	"github.com/kehila-platform/kehila/internal/localstore"
	"github.com/kehila-platform/kehila/internal/sweep"
	"github.com/kehila-platform/kehila/pkg/backend"
	"github.com/kehila-platform/kehila/pkg/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	log.Printf("Starting kehila server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	var (
		b       store.Backend
		conn    *db.DB
		cleanup func()
	)

	switch cfg.Backend.Mode {
	case config.ModeLocal:
		conn, err = db.New(ctx, cfg.DatabasePath, logger)
		if err != nil {
			log.Fatalf("Failed to open DB: %v", err)
		}
		if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		b = localstore.New(conn, logger, localstore.Options{
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenDuration,
			UploadDir: cfg.UploadDir,
		})
		cleanup = func() {
			if err := conn.Close(); err != nil {
				log.Printf("Error closing DB: %v", err)
			}
		}
	case config.ModeRemote:
		backend.SetLogger(logger)
		client, err := backend.NewDefaultClient(cfg.Backend)
		if err != nil {
			log.Fatalf("Failed to create platform client: %v", err)
		}
		b = client
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Printf("Error closing platform client: %v", err)
			}
		}
	}

	handler := api.SetupRoutes(cfg, version, buildTime, b, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Subscription expiry runs on a schedule independent of request traffic
	sweeper := sweep.New(b, cfg.SweepInterval, logger)
	sweeper.Start(ctx)

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	cleanup()

	log.Println("Server exited")
}
