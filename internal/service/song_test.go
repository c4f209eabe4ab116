package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
)

// =========================================================================
// MOCK SONG REPOSITORY
// =========================================================================

type mockSongRepo struct {
	songs     []model.Song
	playlists map[string][]model.Playlist // songID → playlists linking it
	failWith  error
}

func newMockSongRepo() *mockSongRepo {
	return &mockSongRepo{playlists: make(map[string][]model.Playlist)}
}

func (m *mockSongRepo) ListAllSongs(_ context.Context) ([]model.Song, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]model.Song{}, m.songs...), nil
}

func (m *mockSongRepo) GetSongByID(_ context.Context, id string) (*model.Song, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, s := range m.songs {
		if s.ID == id {
			result := s
			return &result, nil
		}
	}
	return nil, apperror.NotFound("song", id)
}

func (m *mockSongRepo) ListPlaylistsWithSong(_ context.Context, songID string) ([]model.Playlist, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]model.Playlist{}, m.playlists[songID]...), nil
}

func newTestSongService(t *testing.T) (*SongService, *mockSongRepo) {
	t.Helper()
	repo := newMockSongRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSongService(repo, logger), repo
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestSongListAll(t *testing.T) {
	svc, repo := newTestSongService(t)
	repo.songs = []model.Song{
		{ID: "song-1", Title: "Imagine", Artists: "John Lennon"},
		{ID: "song-2", Title: "Bohemian Rhapsody", Artists: "Queen"},
	}

	songs, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("len(songs) = %d, want 2", len(songs))
	}
	// Repository order is passed through untouched.
	if songs[0].ID != "song-1" || songs[1].ID != "song-2" {
		t.Errorf("songs out of order: %v", songs)
	}
}

func TestSongListAll_EmptyLibrary(t *testing.T) {
	svc, _ := newTestSongService(t)

	songs, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if songs == nil || len(songs) != 0 {
		t.Errorf("ListAll() = %v, want an empty non-nil slice", songs)
	}
}

// =========================================================================
// DETAIL TESTS
// =========================================================================

func TestSongGet(t *testing.T) {
	svc, repo := newTestSongService(t)
	repo.songs = []model.Song{{ID: "song-1", Title: "Imagine", Artists: "John Lennon"}}
	repo.playlists["song-1"] = []model.Playlist{
		{ID: "playlist-1", Name: "Road Trip", UserID: "alice-id"},
		{ID: "playlist-2", Name: "Chill", UserID: "bob-id"},
	}

	detail, err := svc.Get(context.Background(), "song-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if detail.Song.Title != "Imagine" {
		t.Errorf("Song.Title = %q, want %q", detail.Song.Title, "Imagine")
	}
	if len(detail.Playlists) != 2 {
		t.Errorf("len(Playlists) = %d, want 2", len(detail.Playlists))
	}
}

// A song whose every association was removed still has a detail page —
// with an empty playlist list, not an error.
func TestSongGet_OrphanedSong(t *testing.T) {
	svc, repo := newTestSongService(t)
	repo.songs = []model.Song{{ID: "song-1", Title: "Imagine", Artists: "John Lennon"}}

	detail, err := svc.Get(context.Background(), "song-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if detail.Playlists == nil || len(detail.Playlists) != 0 {
		t.Errorf("Playlists = %v, want an empty non-nil slice", detail.Playlists)
	}
}

func TestSongGet_NotFound(t *testing.T) {
	svc, _ := newTestSongService(t)

	_, err := svc.Get(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSongGet_EmptyID(t *testing.T) {
	svc, _ := newTestSongService(t)

	_, err := svc.Get(context.Background(), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Get() error = %v, want ErrValidation", err)
	}
}
