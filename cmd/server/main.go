// Package main is the entry point for the playlistify server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main"
// package. The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars or a .env file)
// 2. Create dependencies (logger, database connections, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.). This separation makes the app testable and its
// components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// A project might have multiple executables (e.g., cmd/server, cmd/migrate).
// Each gets its own directory with its own main.go.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/playlistify/internal/server"
)

func main() {
	// === 1. LOAD .env (IF PRESENT) ===
	// godotenv reads KEY=VALUE pairs from a .env file into the process
	// environment. Real environment variables take precedence, so production
	// deployments (where config comes from the orchestrator) are unaffected.
	// A missing .env file is fine — local convenience only.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", slog.String("error", err.Error()))
	}

	// === 2. SET UP LOGGING ===
	// slog.New creates a structured logger. TextHandler outputs
	// human-readable logs to the terminal.
	//
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 3. READ CONFIGURATION ===
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// SESSION_SECRET signs the session cookies. Must be long and random:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	// The server refuses to start without it — a guessable secret would let
	// anyone forge a session for any user.
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		logger.Error("SESSION_SECRET not set — refusing to start")
		os.Exit(1)
	}

	// Spotify app credentials for the catalog handshake. The server starts
	// without them, but every handshake will fail and search degrades to
	// its unavailable notice.
	spotifyClientID := os.Getenv("SPOTIFY_CLIENT_ID")
	spotifyClientSecret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if spotifyClientID == "" || spotifyClientSecret == "" {
		logger.Warn("Spotify credentials not set — catalog search will be unavailable")
	}

	// === 4. DATABASE PATH ===
	// Default to "data/playlistify.db" in the project root.
	// DB_PATH env var allows overriding for production deployments.
	// Example: DB_PATH=/var/lib/playlistify/prod.db
	dbPath := "data/playlistify.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// Ensure the data directory exists (like `mkdir -p`).
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 5. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:                port,
		DBPath:              dbPath,
		SessionSecret:       sessionSecret,
		SpotifyClientID:     spotifyClientID,
		SpotifyClientSecret: spotifyClientSecret,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
