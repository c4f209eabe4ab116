// Package catalog wraps the external music catalog the search page is built
// on. The rest of the app only sees the Client interface and the normalized
// model.TrackRecord — never the provider's wire format.
//
// WHY AN INTERFACE?
// The client is an injected dependency, not a process-wide singleton. The
// import service receives a Client; tests hand it a stub that returns canned
// records or a failure, with no network involved.
package catalog

import (
	"context"
	"time"

	"github.com/sakif/playlistify/internal/model"
)

// Token is a bearer token obtained from the catalog's auth endpoint.
//
// The handshake happens once per login and the token is then carried in the
// user's session (see auth.Session). Whether it is still usable is decided
// by the session's staleness rule — the catalog package only reports what
// the provider said.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Client is the catalog operations the application needs.
//
// Both methods surface provider failures (transport errors, auth rejection,
// non-2xx statuses) as apperror.ErrUnavailable — the caller treats that as
// a recoverable, user-visible condition, not a crash.
type Client interface {
	// Handshake performs the bearer-token handshake with the catalog.
	Handshake(ctx context.Context) (Token, error)

	// Search runs a free-text track search using the given bearer token
	// and returns normalized records.
	Search(ctx context.Context, accessToken, query string) ([]model.TrackRecord, error)
}
