// jidcore - JID registration service
//
// This is the main entry point for the jidcore application: a small
// credential and token backend for location-scoped JID registrations.
// It owns the account database, the deployment signing keypair, and
// the HTTP login/verification surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jidware/jidcore/migrations"

	"github.com/jidware/jidcore/internal/api"
	"github.com/jidware/jidcore/internal/audit"
	"github.com/jidware/jidcore/internal/auth"
	"github.com/jidware/jidcore/internal/infrastructure/config"
	"github.com/jidware/jidcore/internal/infrastructure/database"
	"github.com/jidware/jidcore/internal/infrastructure/logging"
	"github.com/jidware/jidcore/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting jidcore",
		"version", version,
		"commit", commit,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Warm up the signing keypair before taking traffic. First boot
	// generates and persists it; corrupt key material aborts startup.
	keys := auth.NewKeyManager(settings.NewSQLiteStore(db.DB), cfg.Auth.RSAKeyBits)
	generated, err := keys.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("preparing key material: %w", err)
	}
	if generated {
		log.Info("generated new signing keypair", "bits", cfg.Auth.RSAKeyBits)
		entry := &audit.Entry{
			Action:    audit.ActionKeyGenerate,
			ActorRole: "system",
			Outcome:   audit.OutcomeSuccess,
		}
		if auditErr := auditRepo.Create(ctx, entry); auditErr != nil {
			log.Error("writing audit entry", "error", auditErr)
		}
	}

	// Assemble the auth service
	authService, err := auth.NewService(auth.ServiceDeps{
		Admins:   auth.NewAdminRepository(db.DB),
		Users:    auth.NewUserRepository(db.DB),
		Issuer:   auth.NewIssuer(keys, cfg.TokenTTL()),
		Verifier: auth.NewVerifier(keys),
		Audit:    auditRepo,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:  cfg,
		Logger:  log,
		Auth:    authService,
		DB:      db,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)

	// Block until shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the configuration file path.
// Uses JIDCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("JIDCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
