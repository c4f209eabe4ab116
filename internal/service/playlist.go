// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// PlaylistService owns every rule about playlists:
//   - name validation
//   - the ownership gate on every mutation (rename, delete, remove-song,
//     attach-song)
//   - the NotFound-vs-Forbidden distinction
//
// DEPENDENCY INJECTION:
// The service takes repository.PlaylistRepository (interface), NOT a
// *sqlite.DB. Tests pass a mock repository; main.go passes SQLite.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// Validation constants.
const (
	MaxPlaylistNameLength = 100
)

// PlaylistView bundles a playlist with its songs and an ownership flag.
// The detail page needs all three: the flag decides whether the viewer
// sees the remove/rename/delete controls.
type PlaylistView struct {
	Playlist *model.Playlist `json:"playlist"`
	Songs    []model.Song    `json:"songs"`
	IsOwner  bool            `json:"isOwner"`
}

// PlaylistService handles business logic for playlists.
type PlaylistService struct {
	playlists repository.PlaylistRepository
	logger    *slog.Logger
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(playlists repository.PlaylistRepository, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{
		playlists: playlists,
		logger:    logger,
	}
}

// Create validates and saves a new playlist owned by ownerID.
//
// Duplicate names are fine — two playlists called "Favorites" (even for the
// same owner) are distinct records with distinct IDs.
func (s *PlaylistService) Create(ctx context.Context, ownerID, name string) (*model.Playlist, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "playlist name is required")
	}
	if len(name) > MaxPlaylistNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("playlist name must be %d characters or less", MaxPlaylistNameLength))
	}
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerID", "owner is required")
	}

	playlist := &model.Playlist{
		Name:   name,
		UserID: ownerID,
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		s.logger.Error("failed to create playlist",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating playlist: %w", err)
	}

	s.logger.Info("playlist created",
		slog.String("id", playlist.ID),
		slog.String("ownerID", ownerID),
	)

	return playlist, nil
}

// ListByOwner returns a user's playlists, oldest first.
func (s *PlaylistService) ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerID", "owner is required")
	}

	playlists, err := s.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list playlists", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing playlists: %w", err)
	}

	return playlists, nil
}

// Get returns a playlist with its songs, viewable by anyone logged in.
//
// Viewing is NOT ownership-gated — any authenticated user can open any
// playlist by ID. The IsOwner flag tells the caller whether viewerID may
// also mutate it.
func (s *PlaylistService) Get(ctx context.Context, viewerID, playlistID string) (*PlaylistView, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	songs, err := s.playlists.ListSongs(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("listing songs for playlist %s: %w", playlistID, err)
	}

	return &PlaylistView{
		Playlist: playlist,
		Songs:    songs,
		IsOwner:  playlist.UserID == viewerID,
	}, nil
}

// Rename changes a playlist's name. Owner only.
func (s *PlaylistService) Rename(ctx context.Context, actorID, playlistID, newName string) (*model.Playlist, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperror.ValidationFailed("name", "playlist name is required")
	}
	if len(newName) > MaxPlaylistNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("playlist name must be %d characters or less", MaxPlaylistNameLength))
	}

	playlist, err := s.requireOwner(ctx, actorID, playlistID)
	if err != nil {
		return nil, err
	}

	if err := s.playlists.Rename(ctx, playlistID, newName); err != nil {
		return nil, err
	}

	s.logger.Info("playlist renamed",
		slog.String("id", playlistID),
		slog.String("newName", newName),
	)

	playlist.Name = newName
	return playlist, nil
}

// Delete removes a playlist and (via cascade) its song associations.
// Owner only.
func (s *PlaylistService) Delete(ctx context.Context, actorID, playlistID string) error {
	if _, err := s.requireOwner(ctx, actorID, playlistID); err != nil {
		return err
	}

	if err := s.playlists.Delete(ctx, playlistID); err != nil {
		return err
	}

	s.logger.Info("playlist deleted", slog.String("id", playlistID))
	return nil
}

// RemoveSong detaches a song from a playlist. Owner only.
//
// The underlying repository call is idempotent — removing a song that is
// not in the playlist succeeds and changes nothing. The ownership check
// still runs first, so a non-owner gets Forbidden even for a no-op.
func (s *PlaylistService) RemoveSong(ctx context.Context, actorID, playlistID, songID string) error {
	if songID == "" {
		return apperror.ValidationFailed("song", "song ID is required")
	}

	if _, err := s.requireOwner(ctx, actorID, playlistID); err != nil {
		return err
	}

	if err := s.playlists.RemoveSong(ctx, playlistID, songID); err != nil {
		return err
	}

	s.logger.Info("song removed from playlist",
		slog.String("playlistID", playlistID),
		slog.String("songID", songID),
	)
	return nil
}

// AddSongChoices returns the playlist and the songs that could still be
// linked into it — everything in the library that is not already on it.
// Owner only: the choices feed the add-existing-song form, which is a
// mutation surface.
func (s *PlaylistService) AddSongChoices(ctx context.Context, actorID, playlistID string) (*model.Playlist, []model.Song, error) {
	playlist, err := s.requireOwner(ctx, actorID, playlistID)
	if err != nil {
		return nil, nil, err
	}

	choices, err := s.playlists.ListSongsNotIn(ctx, playlistID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing song choices for playlist %s: %w", playlistID, err)
	}

	return playlist, choices, nil
}

// AttachSong links an EXISTING library song into a playlist. Owner only.
//
// This is the other way songs get onto a playlist, next to the catalog
// import: no new Song row, just a new association. The repository refuses a
// duplicate link (Conflict) and a missing song (NotFound).
func (s *PlaylistService) AttachSong(ctx context.Context, actorID, playlistID, songID string) error {
	if songID == "" {
		return apperror.ValidationFailed("song", "song ID is required")
	}

	if _, err := s.requireOwner(ctx, actorID, playlistID); err != nil {
		return err
	}

	if err := s.playlists.LinkSong(ctx, playlistID, songID); err != nil {
		return err
	}

	s.logger.Info("existing song linked into playlist",
		slog.String("playlistID", playlistID),
		slog.String("songID", songID),
	)
	return nil
}

// requireOwner implements the READ-THEN-ACT ownership gate used by every
// mutation:
//
//  1. Fetch the playlist. Doesn't exist → ErrNotFound (404).
//  2. Compare owners. Exists but not yours → ErrForbidden (403).
//
// The order matters: a blind "UPDATE ... WHERE id=? AND user_id=?" can't
// tell those two cases apart, and the app wants honest status codes —
// playlist IDs are visible to every logged-in user anyway, so a 403 leaks
// nothing that the detail page doesn't already show.
func (s *PlaylistService) requireOwner(ctx context.Context, actorID, playlistID string) (*model.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if playlist.UserID != actorID {
		return nil, apperror.Forbidden("you do not own this playlist")
	}

	return playlist, nil
}
