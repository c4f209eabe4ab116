// Track import business logic: search the catalog, carry selections through
// the client as opaque payloads, commit them into a playlist.
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/catalog"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// ImportService orchestrates the two-step track import flow:
//
//	STEP 1 (search): the owner searches the catalog from a playlist's search
//	page. Each hit is rendered with an opaque payload attached.
//	STEP 2 (commit): the client posts back the payloads of the selected
//	hits. Each decodes back into a TrackRecord and becomes a Song row
//	linked into the playlist.
//
// WHY OPAQUE PAYLOADS?
// Between search and commit there is a full client round-trip. Rather than
// keeping server-side search state (a cache keyed by session, with expiry
// headaches), the full track record rides along with the form: EncodeTrack
// at render time, DecodeTrack at commit time. The server stays stateless
// and a payload survives being copied between tabs.
type ImportService struct {
	catalog   catalog.Client
	playlists repository.PlaylistRepository
	logger    *slog.Logger
}

// NewImportService creates an ImportService.
func NewImportService(
	cat catalog.Client,
	playlists repository.PlaylistRepository,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		catalog:   cat,
		playlists: playlists,
		logger:    logger,
	}
}

// SearchResult is one catalog hit plus the payload that re-identifies it at
// commit time.
type SearchResult struct {
	Track   model.TrackRecord `json:"track"`
	Payload string            `json:"payload"`
}

// Search runs a catalog search on behalf of a playlist owner.
//
// Only the owner may import into a playlist, so the ownership gate runs
// BEFORE the catalog is contacted — a non-owner gets Forbidden without
// costing us an upstream request.
//
// Catalog failures propagate as apperror.ErrUnavailable; the handler decides
// how gracefully to degrade.
func (s *ImportService) Search(ctx context.Context, actorID, playlistID, accessToken, query string) ([]SearchResult, error) {
	if err := s.requireOwner(ctx, actorID, playlistID); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	tracks, err := s.catalog.Search(ctx, accessToken, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(tracks))
	for _, track := range tracks {
		payload, err := EncodeTrack(track)
		if err != nil {
			return nil, fmt.Errorf("encoding track %q: %w", track.Title, err)
		}
		results = append(results, SearchResult{Track: track, Payload: payload})
	}

	return results, nil
}

// Commit imports the selected tracks into a playlist.
//
// Each payload decodes into a TrackRecord and is stored via AddSong, which
// creates the Song row and its association in one transaction. Committing
// zero payloads is a valid no-op (the user submitted the form with nothing
// ticked).
//
// A single undecodable payload fails the whole commit with a validation
// error BEFORE anything is written — partial imports from a corrupt form
// would be much harder for the user to reason about than a clean rejection.
func (s *ImportService) Commit(ctx context.Context, actorID, playlistID string, payloads []string) ([]model.Song, error) {
	if err := s.requireOwner(ctx, actorID, playlistID); err != nil {
		return nil, err
	}

	if len(payloads) == 0 {
		return []model.Song{}, nil
	}

	// Decode everything first — reject the whole batch on the first bad one.
	tracks := make([]model.TrackRecord, 0, len(payloads))
	for i, payload := range payloads {
		track, err := DecodeTrack(payload)
		if err != nil {
			return nil, apperror.ValidationFailed("songs",
				fmt.Sprintf("selection %d could not be decoded", i+1))
		}
		tracks = append(tracks, track)
	}

	songs := make([]model.Song, 0, len(tracks))
	for _, track := range tracks {
		song := &model.Song{
			Title:      track.Title,
			Artists:    track.Artists,
			CatalogID:  track.CatalogID,
			AlbumName:  track.AlbumName,
			AlbumImage: track.AlbumImage,
		}
		if err := s.playlists.AddSong(ctx, playlistID, song); err != nil {
			return nil, fmt.Errorf("importing %q into playlist %s: %w", track.Title, playlistID, err)
		}
		songs = append(songs, *song)
	}

	s.logger.Info("tracks imported",
		slog.String("playlistID", playlistID),
		slog.Int("count", len(songs)),
	)

	return songs, nil
}

// requireOwner is the same read-then-act gate PlaylistService uses:
// missing playlist → NotFound, someone else's playlist → Forbidden.
func (s *ImportService) requireOwner(ctx context.Context, actorID, playlistID string) error {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.UserID != actorID {
		return apperror.Forbidden("you do not own this playlist")
	}
	return nil
}

// EncodeTrack serialises a TrackRecord into an opaque form-safe string:
// JSON wrapped in unpadded base64url. The encoding is an implementation
// detail — clients must treat payloads as opaque tokens.
func EncodeTrack(track model.TrackRecord) (string, error) {
	raw, err := json.Marshal(track)
	if err != nil {
		return "", fmt.Errorf("marshaling track record: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeTrack reverses EncodeTrack. Any corruption (bad base64, bad JSON)
// comes back as an error — callers translate it to a validation failure.
func DecodeTrack(payload string) (model.TrackRecord, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return model.TrackRecord{}, fmt.Errorf("decoding track payload: %w", err)
	}

	var track model.TrackRecord
	if err := json.Unmarshal(raw, &track); err != nil {
		return model.TrackRecord{}, fmt.Errorf("unmarshaling track payload: %w", err)
	}

	return track, nil
}
