package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/playlistify/internal/service"
)

// SongHandler owns the song-library endpoints: browse everything imported,
// and one song's detail with the playlists it lives on. Read-only — songs
// enter through the import flow and leave never.
type SongHandler struct {
	songs  *service.SongService
	logger *slog.Logger
}

// NewSongHandler creates a SongHandler.
func NewSongHandler(songs *service.SongService, logger *slog.Logger) *SongHandler {
	return &SongHandler{
		songs:  songs,
		logger: logger,
	}
}

// HandleBrowse lists the whole song library.
//
// HTTP: GET /songs
func (h *SongHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songs.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

// HandleDetail shows one song and the playlists containing it.
//
// HTTP: GET /songs/{id}
func (h *SongHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.songs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
