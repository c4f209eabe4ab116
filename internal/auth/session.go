// Package auth provides password hashing and the server-issued session.
//
// SESSION DESIGN:
// The session is a signed JWT stored in an HttpOnly cookie. Everything a
// request needs to identify the user lives inside the token, so the server
// keeps no session table:
//
//   - "sub"     → the user's internal ID
//   - "cat"     → the catalog bearer token obtained at login
//   - "cat_exp" → when that catalog token expires (unix seconds)
//
// The catalog token is part of the session's explicit data contract rather
// than an ad hoc extra: handlers decode the whole Session struct and use
// CatalogStale to decide whether the token can still be sent to the catalog.
// There is no forced refresh — a stale token simply surfaces as the catalog
// being unavailable on the search page.
//
// The signature (HMAC-SHA256 over the claims) means the client can read the
// cookie but cannot alter the user ID or smuggle in a different token
// without invalidating it.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "playlistify"

// DefaultSessionTTL is how long an issued session cookie stays valid.
// After expiry the user must log in again (which also performs a fresh
// catalog handshake).
const DefaultSessionTTL = 24 * time.Hour

// Session is the per-user state carried across requests.
//
// CatalogToken/CatalogExpiry come from the bearer-token handshake performed
// once at login. CatalogToken may be empty if the handshake failed — search
// then degrades gracefully instead of blocking login.
type Session struct {
	UserID        string
	CatalogToken  string
	CatalogExpiry time.Time
}

// CatalogStale reports whether the session's catalog token should no longer
// be used. A missing token is always stale; otherwise the token is stale
// once now reaches its expiry.
//
// This is a pure function of the session and the clock, so the staleness
// rule is testable without any HTTP or catalog machinery.
func (s Session) CatalogStale(now time.Time) bool {
	if s.CatalogToken == "" {
		return true
	}
	return !now.Before(s.CatalogExpiry)
}

// sessionClaims is the JWT payload for a session cookie. It embeds
// jwt.RegisteredClaims (Subject, ExpiresAt, IssuedAt, Issuer) and adds the
// catalog token bookkeeping as private claims.
type sessionClaims struct {
	CatalogToken  string `json:"cat,omitempty"`
	CatalogExpiry int64  `json:"cat_exp,omitempty"`
	jwt.RegisteredClaims
}

// SessionService signs and verifies session cookies.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a SessionService with the given HMAC secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewSessionService(secret string) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionService{secret: []byte(secret), ttl: DefaultSessionTTL}, nil
}

// Issue signs the session into a compact JWT string suitable for a cookie
// value. The token expires after the service's TTL.
func (s *SessionService) Issue(sess Session) (string, error) {
	if sess.UserID == "" {
		return "", errors.New("auth: session must have a user ID")
	}

	now := time.Now()
	c := sessionClaims{
		CatalogToken: sess.CatalogToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    sessionIssuer,
		},
	}
	if !sess.CatalogExpiry.IsZero() {
		c.CatalogExpiry = sess.CatalogExpiry.Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}

	return signed, nil
}

// Decode parses and verifies a session cookie value.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens minted by other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *SessionService) Decode(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, fmt.Errorf("auth: session expired")
		}
		return Session{}, fmt.Errorf("auth: invalid session: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("auth: invalid session claims")
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("auth: session has no subject")
	}

	sess := Session{
		UserID:       c.Subject,
		CatalogToken: c.CatalogToken,
	}
	if c.CatalogExpiry != 0 {
		sess.CatalogExpiry = time.Unix(c.CatalogExpiry, 0)
	}

	return sess, nil
}
