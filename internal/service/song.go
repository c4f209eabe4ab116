// Song library business logic: browsing every imported song and looking one
// up with the playlists it appears on.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// SongDetail is one song plus every playlist it is linked into. The detail
// page shows both; Playlists is empty (never nil) for an orphaned song.
type SongDetail struct {
	Song      *model.Song      `json:"song"`
	Playlists []model.Playlist `json:"playlists"`
}

// SongService reads the song library. All of it is read-only: songs are
// created by the import flow and linked/unlinked through PlaylistService,
// never edited here.
type SongService struct {
	songs  repository.SongRepository
	logger *slog.Logger
}

// NewSongService creates a SongService.
func NewSongService(songs repository.SongRepository, logger *slog.Logger) *SongService {
	return &SongService{
		songs:  songs,
		logger: logger,
	}
}

// ListAll returns the whole library, oldest import first. Browsing is open
// to every logged-in user — songs carry no owner.
func (s *SongService) ListAll(ctx context.Context) ([]model.Song, error) {
	songs, err := s.songs.ListAllSongs(ctx)
	if err != nil {
		s.logger.Error("failed to list songs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing songs: %w", err)
	}

	return songs, nil
}

// Get returns one song with the playlists containing it.
func (s *SongService) Get(ctx context.Context, songID string) (*SongDetail, error) {
	if songID == "" {
		return nil, apperror.ValidationFailed("id", "song ID is required")
	}

	song, err := s.songs.GetSongByID(ctx, songID)
	if err != nil {
		return nil, err
	}

	playlists, err := s.songs.ListPlaylistsWithSong(ctx, songID)
	if err != nil {
		return nil, fmt.Errorf("listing playlists for song %s: %w", songID, err)
	}

	return &SongDetail{
		Song:      song,
		Playlists: playlists,
	}, nil
}
