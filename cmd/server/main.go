package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bcnelson/yatube/internal/api"
	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/config"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/storage/sql"
	"github.com/bcnelson/yatube/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create data directory if needed (for SQLite)
	if cfg.Database.Driver == "sqlite3" {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatalf("Failed to create data directory: %v", err)
			}
		}
	}

	// Initialize storage
	store, err := sql.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize sessions
	key, err := cfg.Session.SecretBytes()
	if err != nil {
		log.Fatalf("Invalid session secret: %v", err)
	}
	sessions, err := auth.NewSessionManager(key, cfg.Session.Duration, cfg.Session.Secure)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	// Initialize OIDC if enabled
	var oidcComponents *web.OIDCComponents
	if cfg.OIDC.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		provider, err := auth.NewOIDCProvider(
			ctx,
			cfg.OIDC.IssuerURL,
			cfg.OIDC.ClientID,
			cfg.OIDC.ClientSecret,
			cfg.OIDC.RedirectURL,
			cfg.OIDC.GetScopes(),
			cfg.OIDC.GetAllowedDomains(),
		)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize OIDC provider: %v", err)
		}

		stateStore, err := auth.NewStateStore(key, cfg.Session.Secure)
		if err != nil {
			log.Fatalf("Failed to initialize OIDC state store: %v", err)
		}

		oidcComponents = &web.OIDCComponents{Provider: provider, StateStore: stateStore}
		log.Printf("OIDC login enabled (issuer %s)", cfg.OIDC.IssuerURL)
	}

	// Create router
	router := api.NewRouter(
		service.NewPostService(store),
		service.NewAccountService(store),
		sessions,
		cfg.Security,
		oidcComponents,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting Yatube on http://%s", cfg.Server.Addr())
	log.Printf("Press Ctrl+C to stop")

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
