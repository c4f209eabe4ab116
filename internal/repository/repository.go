// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/playlistify/internal/model"
)

// UserRepository stores registered accounts.
//
// The method names carry the User infix because the sqlite DB implements
// this interface and PlaylistRepository on the same receiver — the method
// sets must stay disjoint.
type UserRepository interface {
	// CreateUser inserts a new user. Returns apperror.ErrConflict if the
	// username is already taken (UNIQUE constraint).
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByUsername returns apperror.ErrNotFound if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// PlaylistRepository stores playlists, songs, and their associations.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Playlist, error)

	// ListByOwner returns the owner's playlists ordered by creation.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error)

	Rename(ctx context.Context, id, newName string) error

	// Delete removes the playlist; the schema's ON DELETE CASCADE removes
	// its playlist_song rows in the same statement.
	Delete(ctx context.Context, id string) error

	// ListSongs returns the songs linked into a playlist, in link order.
	ListSongs(ctx context.Context, playlistID string) ([]model.Song, error)

	// ListSongsNotIn returns the songs NOT yet linked into a playlist —
	// the candidate pool for the add-existing-song form.
	ListSongsNotIn(ctx context.Context, playlistID string) ([]model.Song, error)

	// AddSong inserts the song row and its playlist association in one
	// transaction — either both exist afterwards or neither does.
	// The song's generated ID is filled in on success.
	AddSong(ctx context.Context, playlistID string, song *model.Song) error

	// LinkSong associates an EXISTING song with a playlist. Returns
	// apperror.ErrNotFound if the song doesn't exist and
	// apperror.ErrConflict if the association already does.
	LinkSong(ctx context.Context, playlistID, songID string) error

	// RemoveSong deletes the association between a playlist and a song.
	// Idempotent: removing an absent association is a no-op, not an error.
	RemoveSong(ctx context.Context, playlistID, songID string) error
}

// SongRepository reads the song library across playlists. Method names carry
// the Song infix for the same disjointness reason as UserRepository.
type SongRepository interface {
	// ListAllSongs returns every imported song, oldest first.
	ListAllSongs(ctx context.Context) ([]model.Song, error)

	GetSongByID(ctx context.Context, id string) (*model.Song, error)

	// ListPlaylistsWithSong returns the playlists a song is linked into.
	ListPlaylistsWithSong(ctx context.Context, songID string) ([]model.Playlist, error)
}
