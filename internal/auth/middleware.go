package auth

import (
	"context"
	"net/http"
)

// SessionCookieName is the cookie the session JWT is stored in.
//
// The cookie is HttpOnly so JavaScript can never read it — this keeps the
// signed session (and the catalog bearer token inside it) out of reach of
// XSS payloads.
const SessionCookieName = "session"

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "session", s), ANY package that knows the string
// "session" can read or shadow your value. Using a package-private type
// prevents collisions: only THIS package can create a key of type contextKey,
// so only this package can read or write Session values in the context.
type contextKey string

const sessionKey contextKey = "session"

// RequireSession is a middleware that enforces a logged-in session on
// protected routes.
//
// It reads the JWT from the session cookie, verifies it, and stores the
// decoded Session in the request context. If the cookie is missing or the
// token is invalid/expired, it returns 401 Unauthorized and stops the chain.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler that wraps the original. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp
func RequireSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := extractSession(r, sessions)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"you must be logged in"}`))
				return
			}

			// Store the session in context so handlers can read it
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession extracts the session if a valid cookie is present, but does
// NOT block the request if it's missing or invalid.
//
// Used on routes like GET /register and GET /login, where an already
// logged-in user is redirected to their profile instead of seeing the form.
func OptionalSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, err := extractSession(r, sessions); err == nil {
				ctx := context.WithValue(r.Context(), sessionKey, sess)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even without a session
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext retrieves the decoded session from the request context.
//
// Returns (Session{}, false) if the request is anonymous.
//
// Usage in handlers:
//
//	sess, ok := auth.SessionFromContext(r.Context())
//	if !ok {
//	    // anonymous request
//	}
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok && sess.UserID != ""
}

// extractSession reads the session cookie and verifies it.
// Private helper shared by RequireSession and OptionalSession.
func extractSession(r *http.Request, sessions *SessionService) (Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie means no session cookie — anonymous, not a failure
		return Session{}, err
	}

	return sessions.Decode(cookie.Value)
}
