package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/auth"
	"github.com/sakif/playlistify/internal/service"
)

// SearchHandler owns the per-playlist catalog search page: searching the
// catalog (step 1 of the import flow) and committing selections (step 2).
type SearchHandler struct {
	importer *service.ImportService
	logger   *slog.Logger

	// now is stubbed in tests to pin the staleness check to a fixed clock.
	now func() time.Time
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(importer *service.ImportService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		importer: importer,
		logger:   logger,
		now:      time.Now,
	}
}

// searchPageResponse is the search page's data. Notice is non-empty when the
// catalog could not be asked — the page still renders, just without results.
type searchPageResponse struct {
	Query   string                 `json:"query"`
	Results []service.SearchResult `json:"results"`
	Notice  string                 `json:"notice,omitempty"`
}

const catalogDownNotice = "music search is temporarily unavailable, please try again later"

// HandleSearchPage runs a catalog search for a playlist's import page.
//
// HTTP: GET /playlists/{id}/search?q=...
//
// GRACEFUL DEGRADATION:
// Two things can stop us from asking the catalog: the session's bearer token
// has gone stale (expired, or the login-time handshake failed), or the
// catalog itself errors. In BOTH cases the page renders normally with zero
// results and a notice — a flaky third party must not 500 the page.
//
// Ownership problems are different: a 403/404 here is about OUR data and is
// reported honestly, before the catalog is ever contacted.
func (h *SearchHandler) HandleSearchPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	playlistID := r.PathValue("id")
	query := r.URL.Query().Get("q")

	if sess.CatalogStale(h.now()) {
		// Still run the ownership gate so a non-owner gets a 403, not a
		// misleading "catalog down" page.
		if _, err := h.importer.Search(r.Context(), sess.UserID, playlistID, "", ""); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchPageResponse{
			Query:   query,
			Results: []service.SearchResult{},
			Notice:  catalogDownNotice,
		})
		return
	}

	results, err := h.importer.Search(r.Context(), sess.UserID, playlistID, sess.CatalogToken, query)
	if err != nil {
		if errors.Is(err, apperror.ErrUnavailable) {
			h.logger.Warn("catalog search degraded",
				slog.String("playlistID", playlistID),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusOK, searchPageResponse{
				Query:   query,
				Results: []service.SearchResult{},
				Notice:  catalogDownNotice,
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchPageResponse{
		Query:   query,
		Results: results,
	})
}

// HandleImport commits the selected tracks into the playlist.
//
// HTTP: POST /playlists/{id}/search
// FORM FIELDS: pick_songs (the submit control), songs (repeated — one opaque
// payload per selected track)
//
// The payloads were minted by HandleSearchPage; the commit needs no catalog
// access at all, so it works even if the catalog died between the two steps.
// Submitting with nothing selected is a valid no-op.
func (h *SearchHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	playlistID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	if r.PostFormValue("pick_songs") == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "unrecognized search action",
		})
		return
	}

	songs, err := h.importer.Commit(r.Context(), sess.UserID, playlistID, r.PostForm["songs"])
	if err != nil {
		writeError(w, err)
		return
	}

	// 201 like every other creation endpoint — the commit minted new Song
	// rows (even the zero-selection no-op keeps the shape).
	writeJSON(w, http.StatusCreated, map[string]any{
		"imported": songs,
		"redirect": "/playlists/" + playlistID,
	})
}
