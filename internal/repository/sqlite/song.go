package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// compile-time check that *DB implements repository.SongRepository
var _ repository.SongRepository = (*DB)(nil)

// ListAllSongs returns every imported song, oldest first (xids sort by
// creation time). This is the whole library, across all playlists — a song
// appears once here no matter how many playlists link it.
func (db *DB) ListAllSongs(ctx context.Context) ([]model.Song, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, artists, catalog_id, album_name, album_image, created_at
		 FROM songs
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all songs: %w", err)
	}
	defer rows.Close()

	songs := []model.Song{}
	for rows.Next() {
		var s model.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artists, &s.CatalogID, &s.AlbumName, &s.AlbumImage, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning song row: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating song rows: %w", err)
	}

	return songs, nil
}

// GetSongByID retrieves a single song.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetSongByID(ctx context.Context, id string) (*model.Song, error) {
	var s model.Song

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, artists, catalog_id, album_name, album_image, created_at
		 FROM songs WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.Title,
		&s.Artists,
		&s.CatalogID,
		&s.AlbumName,
		&s.AlbumImage,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("song", id)
		}
		return nil, fmt.Errorf("sqlite: getting song %s: %w", id, err)
	}

	return &s, nil
}

// ListPlaylistsWithSong returns the playlists a song is linked into, in link
// order. Empty (not an error) for a song on no playlist — possible after its
// last association is removed, since removal never deletes the song row.
func (db *DB) ListPlaylistsWithSong(ctx context.Context, songID string) ([]model.Playlist, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.name, p.user_id, p.created_at
		 FROM playlists p
		 JOIN playlist_song ps ON ps.playlist_id = p.id
		 WHERE ps.song_id = ?
		 ORDER BY ps.id ASC`,
		songID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlists with song %s: %w", songID, err)
	}
	defer rows.Close()

	playlists := []model.Playlist{}
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating playlist rows: %w", err)
	}

	return playlists, nil
}
