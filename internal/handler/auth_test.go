package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/auth"
	"github.com/stretchr/testify/assert"
)

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestHandleRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates account and logs straight in", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"long enough pw"}}
		rr := httptest.NewRecorder()
		env.authHandler.HandleRegister(rr, formRequest("/register", "", form))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var body struct {
			User struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"user"`
			Redirect string `json:"redirect"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "alice", body.User.Username)
		assert.NotEmpty(t, body.User.ID)
		assert.Equal(t, "/users/profile/"+body.User.ID, body.Redirect)

		// Registering establishes the session — no second trip through the
		// login form. The cookie carries the handshake's catalog token.
		cookie := findSessionCookie(t, rr)
		if !assert.NotNil(t, cookie, "register must set the session cookie") {
			return
		}
		assert.True(t, cookie.HttpOnly)
		sess, err := env.sessions.Decode(cookie.Value)
		assert.NoError(t, err)
		assert.Equal(t, body.User.ID, sess.UserID)
		assert.Equal(t, "stub-catalog-token", sess.CatalogToken)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"another password"}}
		rr := httptest.NewRecorder()
		env.authHandler.HandleRegister(rr, formRequest("/register", "", form))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Empty(t, rr.Result().Cookies(), "failed registration must not set a cookie")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		form := url.Values{"username": {"bob"}, "password": {"short"}}
		rr := httptest.NewRecorder()
		env.authHandler.HandleRegister(rr, formRequest("/register", "", form))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, rr.Result().Cookies())
	})
}

// A dead catalog must not block registration any more than it blocks login.
func TestHandleRegister_CatalogDownStillLogsIn(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.handshakeErr = apperror.Unavailable("catalog", "upstream down")

	form := url.Values{"username": {"alice"}, "password": {"long enough pw"}}
	rr := httptest.NewRecorder()
	env.authHandler.HandleRegister(rr, formRequest("/register", "", form))

	assert.Equal(t, http.StatusCreated, rr.Code)

	cookie := findSessionCookie(t, rr)
	if !assert.NotNil(t, cookie) {
		return
	}
	sess, err := env.sessions.Decode(cookie.Value)
	assert.NoError(t, err)
	assert.Empty(t, sess.CatalogToken)
}

func TestHandleRegisterPage_RedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	req := getRequest("/register", "")
	req.AddCookie(env.sessionCookie(t, user.ID, true))
	rr := env.serveOptional(env.authHandler.HandleRegisterPage, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/users/profile/"+user.ID, rr.Header().Get("Location"))
}

func TestHandleRegisterPage_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	rr := env.serveOptional(env.authHandler.HandleRegisterPage, getRequest("/register", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func findSessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestHandleLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	form := url.Values{"username": {"alice"}, "password": {"test password"}}
	rr := httptest.NewRecorder()
	env.authHandler.HandleLogin(rr, formRequest("/login", "", form))

	assert.Equal(t, http.StatusOK, rr.Code)

	cookie := findSessionCookie(t, rr)
	if !assert.NotNil(t, cookie, "login must set the session cookie") {
		return
	}
	assert.True(t, cookie.HttpOnly, "session cookie must be HttpOnly")

	// The cookie decodes to a session carrying the catalog token from the
	// login-time handshake.
	sess, err := env.sessions.Decode(cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, "stub-catalog-token", sess.CatalogToken)
	assert.False(t, sess.CatalogExpiry.IsZero())

	var body struct {
		Redirect string `json:"redirect"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "/users/profile/"+user.ID, body.Redirect)
}

// A dead catalog must not block login: the session is issued without a
// catalog token and search degrades later.
func TestHandleLogin_CatalogDownStillLogsIn(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")
	env.catalog.handshakeErr = apperror.Unavailable("catalog", "upstream down")

	form := url.Values{"username": {"alice"}, "password": {"test password"}}
	rr := httptest.NewRecorder()
	env.authHandler.HandleLogin(rr, formRequest("/login", "", form))

	assert.Equal(t, http.StatusOK, rr.Code)

	cookie := findSessionCookie(t, rr)
	if !assert.NotNil(t, cookie) {
		return
	}
	sess, err := env.sessions.Decode(cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Empty(t, sess.CatalogToken)
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")

	tests := []struct {
		name string
		form url.Values
	}{
		{"wrong password", url.Values{"username": {"alice"}, "password": {"wrong password"}}},
		{"unknown username", url.Values{"username": {"mallory"}, "password": {"test password"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.authHandler.HandleLogin(rr, formRequest("/login", "", tt.form))

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Empty(t, rr.Result().Cookies(), "failed login must not set a cookie")

			// Both failure modes return the same message — no username
			// existence oracle.
			var body struct {
				Message string `json:"message"`
			}
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, "invalid username or password", body.Message)
		})
	}
}

// =========================================================================
// LOGOUT TESTS
// =========================================================================

func TestHandleLogout(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.authHandler.HandleLogout(rr, getRequest("/logout", ""))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	cookie := findSessionCookie(t, rr)
	if assert.NotNil(t, cookie) {
		assert.Less(t, cookie.MaxAge, 0, "logout must expire the session cookie")
		assert.Empty(t, cookie.Value)
	}
}

// =========================================================================
// ROOT REDIRECT TESTS
// =========================================================================

func TestHandleRoot(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	t.Run("anonymous goes to register", func(t *testing.T) {
		rr := env.serveOptional(env.authHandler.HandleRoot, getRequest("/", ""))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/register", rr.Header().Get("Location"))
	})

	t.Run("logged in goes to profile", func(t *testing.T) {
		req := getRequest("/", "")
		req.AddCookie(env.sessionCookie(t, user.ID, true))
		rr := env.serveOptional(env.authHandler.HandleRoot, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/users/profile/"+user.ID, rr.Header().Get("Location"))
	})
}
