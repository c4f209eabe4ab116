package handler_test

// Shared wiring for the handler tests.
//
// These tests exercise the full stack below the router: real services, the
// real SQLite repository (in-memory), and a stub catalog client. Protected
// handlers are invoked through the real RequireSession middleware with a
// genuine signed cookie, so the session plumbing is tested too — the only
// fake thing anywhere is the catalog.

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sakif/playlistify/internal/auth"
	"github.com/sakif/playlistify/internal/catalog"
	"github.com/sakif/playlistify/internal/handler"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository/sqlite"
	"github.com/sakif/playlistify/internal/service"
)

const testSessionSecret = "test-secret-test-secret-test-secret"

// stubCatalog implements catalog.Client with canned data.
type stubCatalog struct {
	tracks       []model.TrackRecord
	searchErr    error
	handshakeErr error
}

func (s *stubCatalog) Handshake(_ context.Context) (catalog.Token, error) {
	if s.handshakeErr != nil {
		return catalog.Token{}, s.handshakeErr
	}
	return catalog.Token{
		AccessToken: "stub-catalog-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (s *stubCatalog) Search(_ context.Context, _, _ string) ([]model.TrackRecord, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.tracks, nil
}

// testEnv bundles everything a handler test needs.
type testEnv struct {
	db       *sqlite.DB
	sessions *auth.SessionService
	catalog  *stubCatalog

	authSvc     *service.AuthService
	playlistSvc *service.PlaylistService
	importSvc   *service.ImportService
	songSvc     *service.SongService

	authHandler     *handler.AuthHandler
	playlistHandler *handler.PlaylistHandler
	searchHandler   *handler.SearchHandler
	songHandler     *handler.SongHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions, err := auth.NewSessionService(testSessionSecret)
	if err != nil {
		t.Fatalf("creating session service: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cat := &stubCatalog{}

	authSvc := service.NewAuthService(db, auth.NewPasswordServiceForTest(4), logger)
	playlistSvc := service.NewPlaylistService(db, logger)
	importSvc := service.NewImportService(cat, db, logger)
	songSvc := service.NewSongService(db, logger)

	return &testEnv{
		db:              db,
		sessions:        sessions,
		catalog:         cat,
		authSvc:         authSvc,
		playlistSvc:     playlistSvc,
		importSvc:       importSvc,
		songSvc:         songSvc,
		authHandler:     handler.NewAuthHandler(authSvc, sessions, cat, logger),
		playlistHandler: handler.NewPlaylistHandler(playlistSvc, authSvc, logger),
		searchHandler:   handler.NewSearchHandler(importSvc, logger),
		songHandler:     handler.NewSongHandler(songSvc, logger),
	}
}

// registerUser creates an account directly through the service.
func (e *testEnv) registerUser(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.authSvc.Register(context.Background(), username, "test password")
	if err != nil {
		t.Fatalf("registering %s: %v", username, err)
	}
	return user
}

// sessionCookie issues a signed session cookie for the given user, with a
// fresh catalog token unless withCatalog is false.
func (e *testEnv) sessionCookie(t *testing.T, userID string, withCatalog bool) *http.Cookie {
	t.Helper()
	sess := auth.Session{UserID: userID}
	if withCatalog {
		sess.CatalogToken = "stub-catalog-token"
		sess.CatalogExpiry = time.Now().Add(time.Hour)
	}
	value, err := e.sessions.Issue(sess)
	if err != nil {
		t.Fatalf("issuing session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: value}
}

// formRequest builds a form-encoded POST with path values set.
func formRequest(target string, pathID string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	return req
}

// getRequest builds a GET with path values set.
func getRequest(target string, pathID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	return req
}

// serveProtected runs a handler behind the real RequireSession middleware,
// exactly as the router does in production.
func (e *testEnv) serveProtected(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	auth.RequireSession(e.sessions)(h).ServeHTTP(rr, req)
	return rr
}

// serveOptional runs a handler behind OptionalSession.
func (e *testEnv) serveOptional(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	auth.OptionalSession(e.sessions)(h).ServeHTTP(rr, req)
	return rr
}
