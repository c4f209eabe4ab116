package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
)

// createTestPlaylist creates a playlist for the given owner.
func createTestPlaylist(t *testing.T, db *DB, ownerID, name string) *model.Playlist {
	t.Helper()
	p := &model.Playlist{Name: name, UserID: ownerID}
	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test playlist: %v", err)
	}
	return p
}

// addTestSong links a song into a playlist via AddSong.
func addTestSong(t *testing.T, db *DB, playlistID, title string) *model.Song {
	t.Helper()
	song := &model.Song{
		Title:      title,
		Artists:    "Test Artist",
		CatalogID:  "cat-" + title,
		AlbumName:  "Test Album",
		AlbumImage: "https://example.com/cover.jpg",
	}
	if err := db.AddSong(context.Background(), playlistID, song); err != nil {
		t.Fatalf("failed to add test song: %v", err)
	}
	return song
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var count int
	// table names come from this file only, never from user input
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("counting rows in %s: %v", table, err)
	}
	return count
}

// =========================================================================
// CREATE / GET / LIST TESTS
// =========================================================================

func TestPlaylistCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	p := &model.Playlist{Name: "Road Trip", UserID: owner.ID}
	if err := db.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == "" {
		t.Error("Create() did not set playlist.ID")
	}
	if p.CreatedAt.IsZero() {
		t.Error("Create() did not set playlist.CreatedAt")
	}
}

func TestPlaylistGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestPlaylistListByOwner_OrderedByCreation(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")

	first := createTestPlaylist(t, db, owner.ID, "First")
	second := createTestPlaylist(t, db, owner.ID, "Second")
	createTestPlaylist(t, db, other.ID, "Not Mine")

	playlists, err := db.ListByOwner(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}

	if len(playlists) != 2 {
		t.Fatalf("ListByOwner() returned %d playlists, want 2", len(playlists))
	}
	if playlists[0].ID != first.ID || playlists[1].ID != second.ID {
		t.Errorf("ListByOwner() order = [%s, %s], want [%s, %s]",
			playlists[0].Name, playlists[1].Name, first.Name, second.Name)
	}
}

func TestPlaylistListByOwner_Empty(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "loner")

	playlists, err := db.ListByOwner(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(playlists) != 0 {
		t.Errorf("ListByOwner() returned %d playlists, want 0", len(playlists))
	}
}

// =========================================================================
// RENAME / DELETE TESTS
// =========================================================================

func TestPlaylistRename(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	p := createTestPlaylist(t, db, owner.ID, "Old Name")

	if err := db.Rename(context.Background(), p.ID, "New Name"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID() after rename: %v", err)
	}
	if found.Name != "New Name" {
		t.Errorf("Name = %q, want %q", found.Name, "New Name")
	}
}

func TestPlaylistRename_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Rename(context.Background(), "nonexistent", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Rename() error = %v, want ErrNotFound", err)
	}
}

// TestPlaylistDelete_CascadesAssociations verifies the ON DELETE CASCADE:
// deleting a playlist removes its playlist_song rows, but song rows —
// including songs linked into OTHER playlists — survive.
func TestPlaylistDelete_CascadesAssociations(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	doomed := createTestPlaylist(t, db, owner.ID, "Doomed")
	keeper := createTestPlaylist(t, db, owner.ID, "Keeper")

	addTestSong(t, db, doomed.ID, "Song A")
	addTestSong(t, db, doomed.ID, "Song B")
	kept := addTestSong(t, db, keeper.ID, "Song C")

	if err := db.Delete(context.Background(), doomed.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// All of the doomed playlist's associations are gone...
	if got := countRows(t, db, "playlist_song"); got != 1 {
		t.Errorf("playlist_song rows = %d, want 1", got)
	}
	// ...but no Song row was touched.
	if got := countRows(t, db, "songs"); got != 3 {
		t.Errorf("songs rows = %d, want 3", got)
	}

	// The unrelated playlist still lists its song.
	songs, err := db.ListSongs(context.Background(), keeper.ID)
	if err != nil {
		t.Fatalf("ListSongs() error = %v", err)
	}
	if len(songs) != 1 || songs[0].ID != kept.ID {
		t.Errorf("keeper playlist songs = %v, want just %q", songs, kept.Title)
	}
}

func TestPlaylistDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// ADD SONG TESTS
// =========================================================================

func TestAddSong_CreatesSongAndAssociation(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	p := createTestPlaylist(t, db, owner.ID, "Mix")

	song := &model.Song{
		Title:     "Imagine",
		Artists:   "John Lennon",
		CatalogID: "spotify-track-id",
		AlbumName: "Imagine",
	}
	if err := db.AddSong(context.Background(), p.ID, song); err != nil {
		t.Fatalf("AddSong() error = %v", err)
	}

	if song.ID == "" {
		t.Error("AddSong() did not set song.ID")
	}
	// Exactly one song row and one association row per call
	if got := countRows(t, db, "songs"); got != 1 {
		t.Errorf("songs rows = %d, want 1", got)
	}
	if got := countRows(t, db, "playlist_song"); got != 1 {
		t.Errorf("playlist_song rows = %d, want 1", got)
	}
}

// TestAddSong_NoDeduplication pins down the import behavior: adding the same
// catalog track twice creates two distinct Song rows. There is no dedup key
// on catalog_id.
func TestAddSong_NoDeduplication(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	p := createTestPlaylist(t, db, owner.ID, "Mix")

	first := &model.Song{Title: "Imagine", Artists: "John Lennon", CatalogID: "same-id"}
	second := &model.Song{Title: "Imagine", Artists: "John Lennon", CatalogID: "same-id"}

	if err := db.AddSong(context.Background(), p.ID, first); err != nil {
		t.Fatalf("AddSong() first: %v", err)
	}
	if err := db.AddSong(context.Background(), p.ID, second); err != nil {
		t.Fatalf("AddSong() second: %v", err)
	}

	if first.ID == second.ID {
		t.Error("AddSong() reused a song ID — each import must create a fresh row")
	}
	if got := countRows(t, db, "songs"); got != 2 {
		t.Errorf("songs rows = %d, want 2", got)
	}
}

// TestAddSong_MissingPlaylistLeavesNoOrphan verifies the per-item
// transaction: if the association INSERT fails (here: the playlist doesn't
// exist, so the foreign key rejects it), the song INSERT is rolled back too.
func TestAddSong_MissingPlaylistLeavesNoOrphan(t *testing.T) {
	db := newTestDB(t)

	song := &model.Song{Title: "Orphan", Artists: "Nobody", CatalogID: "x"}
	err := db.AddSong(context.Background(), "no-such-playlist", song)
	if err == nil {
		t.Fatal("AddSong() should fail for a nonexistent playlist")
	}

	if got := countRows(t, db, "songs"); got != 0 {
		t.Errorf("songs rows = %d, want 0 (no orphan Song on failed link)", got)
	}
	if got := countRows(t, db, "playlist_song"); got != 0 {
		t.Errorf("playlist_song rows = %d, want 0", got)
	}
}

// =========================================================================
// REMOVE SONG TESTS
// =========================================================================

func TestRemoveSong(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	p := createTestPlaylist(t, db, owner.ID, "Mix")
	song := addTestSong(t, db, p.ID, "Imagine")

	if err := db.RemoveSong(context.Background(), p.ID, song.ID); err != nil {
		t.Fatalf("RemoveSong() error = %v", err)
	}

	if got := countRows(t, db, "playlist_song"); got != 0 {
		t.Errorf("playlist_song rows = %d, want 0", got)
	}
	// The song row itself stays — only the association is removed.
	if got := countRows(t, db, "songs"); got != 1 {
		t.Errorf("songs rows = %d, want 1", got)
	}
}

func TestRemoveSong_AbsentAssociationIsNoOp(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	p := createTestPlaylist(t, db, owner.ID, "Mix")
	song := addTestSong(t, db, p.ID, "Imagine")

	// Removing a pairing that doesn't exist must not error and must not
	// change the table.
	if err := db.RemoveSong(context.Background(), p.ID, "not-a-song"); err != nil {
		t.Fatalf("RemoveSong() on absent association: %v", err)
	}
	if err := db.RemoveSong(context.Background(), "not-a-playlist", song.ID); err != nil {
		t.Fatalf("RemoveSong() on absent playlist: %v", err)
	}

	if got := countRows(t, db, "playlist_song"); got != 1 {
		t.Errorf("playlist_song rows = %d, want 1 (unchanged)", got)
	}
}
