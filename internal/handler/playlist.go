package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/playlistify/internal/auth"
	"github.com/sakif/playlistify/internal/service"
)

// PlaylistHandler owns the profile and playlist endpoints.
//
// All routes here run behind RequireSession — the session in the request
// context is guaranteed to exist. WHO the session belongs to still matters:
// the services enforce ownership on every mutation and the handler just
// passes the actor along.
type PlaylistHandler struct {
	playlists *service.PlaylistService
	users     *service.AuthService
	logger    *slog.Logger
}

// NewPlaylistHandler creates a PlaylistHandler.
func NewPlaylistHandler(
	playlists *service.PlaylistService,
	users *service.AuthService,
	logger *slog.Logger,
) *PlaylistHandler {
	return &PlaylistHandler{
		playlists: playlists,
		users:     users,
		logger:    logger,
	}
}

// HandleProfile shows the session user's profile: who they are and their
// playlists.
//
// HTTP: GET /users/profile/{id}
//
// THE PATH ID IS COSMETIC:
// The {id} segment only makes the URL shareable-looking — the profile shown
// is ALWAYS the session user's, whatever id the path carries. There is no
// viewing of other users' profiles, so no ownership flag either.
func (h *PlaylistHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	user, err := h.users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	playlists, err := h.playlists.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":      toUserResponse(user),
		"playlists": playlists,
	})
}

// HandleCreatePlaylist creates a playlist from the profile page.
//
// HTTP: POST /users/profile/{id}
// FORM FIELDS: name
//
// Same rule as HandleProfile: the path id is ignored and the playlist is
// created for the session user, so posting to any profile URL can only ever
// add to your own collection.
func (h *PlaylistHandler) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlists.Create(r.Context(), sess.UserID, r.PostFormValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"playlist": playlist,
		"redirect": "/playlists/" + playlist.ID,
	})
}

// HandleView shows one playlist with its songs.
//
// HTTP: GET /playlists/{id}
//
// Viewing is open to every logged-in user; isOwner decides whether the
// client renders the mutation controls (remove, rename, delete, search).
func (h *PlaylistHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	view, err := h.playlists.Get(r.Context(), sess.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleRemoveSong detaches a song from a playlist.
//
// HTTP: POST /playlists/{id}
// FORM FIELDS: remove (the submit control), song (the song ID)
//
// The detail page posts back to its own URL; the "remove" field marks the
// intent. Removing a song that's already gone succeeds — the association's
// absence is exactly the state the owner asked for.
func (h *PlaylistHandler) HandleRemoveSong(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	playlistID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	if r.PostFormValue("remove") == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "unrecognized playlist action",
		})
		return
	}

	err := h.playlists.RemoveSong(r.Context(), sess.UserID, playlistID, r.PostFormValue("song"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"redirect": "/playlists/" + playlistID,
	})
}

// HandleAddSongPage serves the add-existing-song form's data: the playlist
// and the library songs that can still be linked into it.
//
// HTTP: GET /playlists/{id}/add-song
//
// Owner-only, like every mutation surface. The choices exclude songs already
// on the playlist — there's nothing valid to pick among those.
func (h *PlaylistHandler) HandleAddSongPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	playlist, choices, err := h.playlists.AddSongChoices(r.Context(), sess.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": playlist,
		"choices":  choices,
	})
}

// HandleAddSong links an existing library song into a playlist.
//
// HTTP: POST /playlists/{id}/add-song
// FORM FIELDS: song (the song ID)
//
// The counterpart of the import flow for songs that are already local —
// no catalog round-trip, just a new association.
func (h *PlaylistHandler) HandleAddSong(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	playlistID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	if err := h.playlists.AttachSong(r.Context(), sess.UserID, playlistID, r.PostFormValue("song")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"redirect": "/playlists/" + playlistID,
	})
}

// HandleUpdatePage serves the rename form's data.
//
// HTTP: GET /playlists/{id}/update
//
// Unlike the detail page, the update page is owner-only — there is nothing
// on it for anyone else.
func (h *PlaylistHandler) HandleUpdatePage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	view, err := h.playlists.Get(r.Context(), sess.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !view.IsOwner {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "you do not own this playlist",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlist": view.Playlist})
}

// HandleUpdate renames a playlist.
//
// HTTP: POST /playlists/{id}/update
// FORM FIELDS: name
func (h *PlaylistHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	playlistID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlists.Rename(r.Context(), sess.UserID, playlistID, r.PostFormValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": playlist,
		"redirect": "/playlists/" + playlistID,
	})
}

// HandleDelete deletes a playlist (and, via cascade, its song links).
//
// HTTP: POST /playlists/{id}/delete
//
// A POST rather than DELETE because the client is a plain HTML form, which
// can only GET and POST.
func (h *PlaylistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	if err := h.playlists.Delete(r.Context(), sess.UserID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"redirect": "/users/profile/" + sess.UserID,
	})
}
