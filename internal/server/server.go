// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads config → Server.New() wires the whole graph:
//   sqlite.DB → services (auth, playlist, import) → handlers → routes
// This is the "composition root" pattern — all dependencies are assembled in
// one place rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/playlistify/internal/auth"
	"github.com/sakif/playlistify/internal/catalog"
	"github.com/sakif/playlistify/internal/handler"
	"github.com/sakif/playlistify/internal/middleware"
	sqliteRepo "github.com/sakif/playlistify/internal/repository/sqlite"
	"github.com/sakif/playlistify/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port          int
	DBPath        string // path to the SQLite database file
	SessionSecret string // HMAC secret for session cookies

	// Catalog (Spotify) app credentials for the client-credentials handshake.
	SpotifyClientID     string
	SpotifyClientSecret string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down
// we must close it to flush pending writes and release the file lock —
// handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Open the database (sqlite.New — also runs migrations)
//  2. Create the auth utilities (sessions, passwords) and the catalog client
//  3. Create the service layer with the repositories
//  4. Create the handlers with the services
//  5. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository INTERFACES (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
// - The catalog client is injected as the catalog.Client interface, so the
//   whole graph can be built with a stub catalog in tests
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	cat := catalog.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	if err := s.setupRoutes(cat); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                        → redirect (profile if logged in, /register otherwise)
//	GET  /register                → registration page
//	POST /register                → create account
//	GET  /login                   → login page
//	POST /login                   → authenticate + set session cookie
//	GET  /logout                  → clear session cookie
//	GET  /users/profile/{id}      → session user's profile        [session required]
//	POST /users/profile/{id}      → create playlist               [session required]
//	GET  /songs                   → browse the song library       [session required]
//	GET  /songs/{id}              → song detail with playlists    [session required]
//	GET  /playlists/{id}          → playlist detail with songs    [session required]
//	POST /playlists/{id}          → remove a song                 [session required]
//	GET  /playlists/{id}/search   → catalog search                [session required]
//	POST /playlists/{id}/search   → import selected tracks        [session required]
//	GET  /playlists/{id}/add-song → existing-song choices         [session required]
//	POST /playlists/{id}/add-song → link an existing song         [session required]
//	GET  /playlists/{id}/update   → rename form data              [session required]
//	POST /playlists/{id}/update   → rename                        [session required]
//	POST /playlists/{id}/delete   → delete playlist               [session required]
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes(cat catalog.Client) error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Auth utilities ===
	sessions, err := auth.NewSessionService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// === Services ===
	// s.db implements both repository.UserRepository and
	// repository.PlaylistRepository — the services see only the interfaces.
	authService := service.NewAuthService(s.db, passwords, s.logger)
	playlistService := service.NewPlaylistService(s.db, s.logger)
	importService := service.NewImportService(cat, s.db, s.logger)
	songService := service.NewSongService(s.db, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, sessions, cat, s.logger)
	playlistHandler := handler.NewPlaylistHandler(playlistService, authService, s.logger)
	searchHandler := handler.NewSearchHandler(importService, s.logger)
	songHandler := handler.NewSongHandler(songService, s.logger)

	// === Public routes ===
	// OptionalSession lets these pages redirect already-logged-in visitors
	// without blocking anonymous ones.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalSession(sessions))
		r.Get("/", authHandler.HandleRoot)
		r.Get("/register", authHandler.HandleRegisterPage)
		r.Get("/login", authHandler.HandleLoginPage)
	})
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	// === Protected routes ===
	// Everything below requires a valid session cookie.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions))

		r.Get("/users/profile/{id}", playlistHandler.HandleProfile)
		r.Post("/users/profile/{id}", playlistHandler.HandleCreatePlaylist)

		r.Get("/songs", songHandler.HandleBrowse)
		r.Get("/songs/{id}", songHandler.HandleDetail)

		r.Route("/playlists/{id}", func(r chi.Router) {
			r.Get("/", playlistHandler.HandleView)
			r.Post("/", playlistHandler.HandleRemoveSong)
			r.Get("/search", searchHandler.HandleSearchPage)
			r.Post("/search", searchHandler.HandleImport)
			r.Get("/add-song", playlistHandler.HandleAddSongPage)
			r.Post("/add-song", playlistHandler.HandleAddSong)
			r.Get("/update", playlistHandler.HandleUpdatePage)
			r.Post("/update", playlistHandler.HandleUpdate)
			r.Post("/delete", playlistHandler.HandleDelete)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3 the database file might be left in an inconsistent
// state. The `defer s.db.Close()` ensures it happens even on panic.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
