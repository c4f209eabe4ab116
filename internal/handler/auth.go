// Package handler contains the HTTP layer: thin adapters between the router
// and the service layer.
//
// HANDLER RESPONSIBILITIES (and nothing more):
//   - Parse the request (forms, path params, cookies)
//   - Call the right service method
//   - Translate the result into a response (JSON body, redirect, cookie)
//
// Business rules live in the services; storage lives in the repositories.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/playlistify/internal/auth"
	"github.com/sakif/playlistify/internal/catalog"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/service"
)

// AuthHandler owns the identity endpoints: register, login, logout, and the
// root redirect.
//
// ESTABLISHING A SESSION:
// Both register and login end the same way — the user is logged in:
//  1. the identity step (create the account, or verify the credentials)
//  2. the catalog bearer-token handshake (catalog.Client) —
//     BEST-EFFORT: a dead catalog must never lock users out
//  3. everything signed into the session cookie (SessionService)
//
// Steps 2 and 3 are shared in establishSession.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionService
	catalog  catalog.Client
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	authSvc *service.AuthService,
	sessions *auth.SessionService,
	cat catalog.Client,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		sessions: sessions,
		catalog:  cat,
		logger:   logger,
	}
}

// userResponse is the public shape of a user. The password digest never
// leaves the server (model.User tags it json:"-" as a second line of
// defense), but an explicit response struct makes the contract obvious.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// HandleRoot redirects / to wherever makes sense for the visitor:
// their profile if logged in, the registration page otherwise.
//
// HTTP: GET /
func (h *AuthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/users/profile/"+sess.UserID, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// HandleRegisterPage serves the registration page.
//
// HTTP: GET /register
//
// An already logged-in visitor has no business here — redirect to their
// profile (the route runs under OptionalSession, so the context may or may
// not hold a session).
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/users/profile/"+sess.UserID, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "register"})
}

// HandleRegister creates a new account and logs the user straight in.
//
// HTTP: POST /register
// FORM FIELDS: username, password
//
// A fresh account goes directly to its profile with a live session — no
// second trip through the login form. Validation failures come back as 400,
// a taken username as 409 (and no cookie is set on either).
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.establishSession(w, r, user); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user registered and logged in", slog.String("userID", user.ID))

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":     toUserResponse(user),
		"redirect": "/users/profile/" + user.ID,
	})
}

// HandleLoginPage serves the login page. Same redirect rule as the
// registration page.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/users/profile/"+sess.UserID, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "login"})
}

// HandleLogin verifies credentials and establishes the session (catalog
// handshake included — see establishSession).
//
// HTTP: POST /login
// FORM FIELDS: username, password
//
// Bad credentials are 401 with one deliberately vague message — the response
// never reveals whether the username exists.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	user, ok, err := h.auth.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		h.logger.Error("login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "invalid username or password",
		})
		return
	}

	if err := h.establishSession(w, r, user); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user logged in", slog.String("userID", user.ID))

	writeJSON(w, http.StatusOK, map[string]any{
		"user":     toUserResponse(user),
		"redirect": "/users/profile/" + user.ID,
	})
}

// establishSession performs the catalog handshake and sets the session
// cookie for an already-verified user. Shared by register and login.
//
// The handshake is best-effort: on failure the session is issued with an
// empty catalog token (the search page degrades later) rather than blocking
// the user from their account.
func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, user *model.User) error {
	sess := auth.Session{UserID: user.ID}
	if tok, err := h.catalog.Handshake(r.Context()); err != nil {
		h.logger.Warn("catalog handshake failed, session issued without a catalog token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		sess.CatalogToken = tok.AccessToken
		sess.CatalogExpiry = tok.ExpiresAt
	}

	cookieValue, err := h.sessions.Issue(sess)
	if err != nil {
		h.logger.Error("issuing session failed", slog.String("error", err.Error()))
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,                 // JavaScript can never read it
		SameSite: http.SameSiteLaxMode, // sent on top-level navigation, not cross-site POSTs
		MaxAge:   int(auth.DefaultSessionTTL.Seconds()),
	})

	return nil
}

// HandleLogout clears the session cookie and sends the visitor back to the
// login page.
//
// HTTP: GET /logout
//
// There is no server-side session to destroy — the session lives entirely
// in the cookie, so expiring the cookie IS the logout. The signed JWT
// technically remains valid until its TTL runs out, an accepted trade-off
// of stateless sessions.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1, // delete immediately
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
