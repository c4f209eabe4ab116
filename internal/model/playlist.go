package model

import "time"

// Playlist is a named collection of songs owned by exactly one user.
// Only the owner may rename or delete it; anyone with the link may view it.
type Playlist struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Song is a locally persisted copy of a track imported from the catalog.
//
// Artists is a denormalized display string ("Artist A, Artist B") — we never
// need to query by individual artist, so there's no artists table.
//
// CatalogID is the external track identifier. Note that songs are NOT
// deduplicated on it: importing the same catalog track twice creates two
// Song rows. Rows are never updated once created; they disappear only via
// the ON DELETE CASCADE from their playlist associations' parents.
type Song struct {
	ID         string    `json:"id"         db:"id"`
	Title      string    `json:"title"      db:"title"`
	Artists    string    `json:"artists"    db:"artists"`
	CatalogID  string    `json:"catalogId"  db:"catalog_id"`
	AlbumName  string    `json:"albumName"  db:"album_name"`
	AlbumImage string    `json:"albumImage" db:"album_image"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// PlaylistSong is the join row linking a song into a playlist.
// Both foreign keys cascade on delete, so removing a playlist (or a song)
// removes its associations automatically.
type PlaylistSong struct {
	ID         string `json:"id"         db:"id"`
	PlaylistID string `json:"playlistId" db:"playlist_id"`
	SongID     string `json:"songId"     db:"song_id"`
}
