package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// compile-time check that *DB implements repository.PlaylistRepository
var _ repository.PlaylistRepository = (*DB)(nil)

// Create inserts a new playlist owned by playlist.UserID.
//
// POINTER RECEIVER ON THE MODEL:
// We take *model.Playlist so the caller's struct gets the generated ID and
// timestamp after the call — same convention as every Create in this package.
func (db *DB) Create(ctx context.Context, playlist *model.Playlist) error {
	playlist.ID = xid.New().String()
	playlist.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO playlists (id, name, user_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		playlist.ID,
		playlist.Name,
		playlist.UserID,
		playlist.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating playlist %q: %w", playlist.Name, err)
	}

	return nil
}

// GetByID retrieves a single playlist.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	var p model.Playlist

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at
		 FROM playlists WHERE id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Name,
		&p.UserID,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("playlist", id)
		}
		return nil, fmt.Errorf("sqlite: getting playlist %s: %w", id, err)
	}

	return &p, nil
}

// ListByOwner returns all playlists owned by a user, oldest first.
//
// rows MUST be closed — the deferred Close releases the connection back to
// the pool even if Scan fails halfway. rows.Err() after the loop catches
// errors that ended the iteration early.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, user_id, created_at
		 FROM playlists
		 WHERE user_id = ?
		 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlists for user %s: %w", ownerID, err)
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

// Rename updates a playlist's name.
// Returns apperror.ErrNotFound if no row was updated.
//
// The ownership check lives in the service layer (it needs to distinguish
// "not found" from "not yours"); this method only touches storage.
func (db *DB) Rename(ctx context.Context, id, newName string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE playlists SET name = ? WHERE id = ?`,
		newName, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: renaming playlist %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rename of playlist %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("playlist", id)
	}

	return nil
}

// Delete removes a playlist. The ON DELETE CASCADE on playlist_song removes
// its associations in the same statement — song rows themselves stay.
// Returns apperror.ErrNotFound if the playlist doesn't exist.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM playlists WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting playlist %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of playlist %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("playlist", id)
	}

	return nil
}

// ListSongs returns the songs linked into a playlist, in the order they
// were added (playlist_song ids are xids, which sort by creation time).
func (db *DB) ListSongs(ctx context.Context, playlistID string) ([]model.Song, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.title, s.artists, s.catalog_id, s.album_name, s.album_image, s.created_at
		 FROM songs s
		 JOIN playlist_song ps ON ps.song_id = s.id
		 WHERE ps.playlist_id = ?
		 ORDER BY ps.id ASC`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing songs for playlist %s: %w", playlistID, err)
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

// ListSongsNotIn returns the songs not yet linked into a playlist, oldest
// first. These are the valid choices for the add-existing-song form — a song
// already on the playlist never appears.
func (db *DB) ListSongsNotIn(ctx context.Context, playlistID string) ([]model.Song, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, artists, catalog_id, album_name, album_image, created_at
		 FROM songs
		 WHERE id NOT IN (SELECT song_id FROM playlist_song WHERE playlist_id = ?)
		 ORDER BY id ASC`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing songs not in playlist %s: %w", playlistID, err)
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

// AddSong inserts a song row and its playlist association atomically.
//
// WHY A TRANSACTION?
// The import flow commits one (Song, PlaylistSong) pair per selected track.
// Without a transaction, a failure between the two INSERTs would leave an
// orphan Song row that belongs to no playlist. BeginTx + defer Rollback +
// Commit guarantees both rows exist or neither does.
//
// The song INSERT runs first because the association needs the generated
// song id. Note there is deliberately NO dedup by catalog_id here — each
// import creates a fresh Song row even for a track imported before.
func (db *DB) AddSong(ctx context.Context, playlistID string, song *model.Song) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning add-song transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit — safe to always defer.
	defer tx.Rollback()

	song.ID = xid.New().String()
	song.CreatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO songs (id, title, artists, catalog_id, album_name, album_image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		song.ID,
		song.Title,
		song.Artists,
		song.CatalogID,
		song.AlbumName,
		song.AlbumImage,
		song.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting song %q: %w", song.Title, err)
	}

	link := model.PlaylistSong{
		ID:         xid.New().String(),
		PlaylistID: playlistID,
		SongID:     song.ID,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO playlist_song (id, playlist_id, song_id)
		 VALUES (?, ?, ?)`,
		link.ID, link.PlaylistID, link.SongID,
	)
	if err != nil {
		// The FK on playlist_id also catches a vanished playlist here.
		return fmt.Errorf("sqlite: linking song %s into playlist %s: %w", song.ID, playlistID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing add-song transaction: %w", err)
	}

	return nil
}

// LinkSong associates an existing song with a playlist — no new Song row,
// just the join entity. Unlike import (which duplicates freely, each commit
// minting fresh rows), linking the SAME existing song twice is refused: the
// add-existing-song form only offers songs not already on the playlist, so a
// duplicate link can only come from a stale or forged form.
func (db *DB) LinkSong(ctx context.Context, playlistID, songID string) error {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM songs WHERE id = ?`, songID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return apperror.NotFound("song", songID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: checking song %s: %w", songID, err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM playlist_song WHERE playlist_id = ? AND song_id = ?`,
		playlistID, songID,
	).Scan(&one)
	if err == nil {
		return apperror.Conflict("playlist song", songID)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: checking existing link for song %s: %w", songID, err)
	}

	link := model.PlaylistSong{
		ID:         xid.New().String(),
		PlaylistID: playlistID,
		SongID:     songID,
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO playlist_song (id, playlist_id, song_id)
		 VALUES (?, ?, ?)`,
		link.ID, link.PlaylistID, link.SongID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking song %s into playlist %s: %w", songID, playlistID, err)
	}

	return nil
}

// RemoveSong deletes the association between a playlist and a song.
//
// Idempotent by design: deleting an absent association affects zero rows
// and that is NOT an error — the end state (no association) is what the
// caller asked for. The song row itself is left alone.
func (db *DB) RemoveSong(ctx context.Context, playlistID, songID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM playlist_song WHERE playlist_id = ? AND song_id = ?`,
		playlistID, songID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing song %s from playlist %s: %w", songID, playlistID, err)
	}

	return nil
}
