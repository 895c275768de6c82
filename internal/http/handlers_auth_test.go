package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
	"github.com/KrownWealth/afrozonauto-admin/internal/service"
)

// loginStub authenticates one fixed credential pair.
type loginStub struct {
	stubAuth
	email    string
	password string
	session  domainauth.Session
}

func (s *loginStub) Authenticate(
	_ context.Context,
	in ports.LoginInput,
) (*domainauth.Session, error) {
	if in.Email != s.email || in.Password != s.password {
		return nil, service.ErrInvalidCredentials
	}
	sess := s.session
	return &sess, nil
}

func newLoginStub() *loginStub {
	return &loginStub{
		stubAuth: stubAuth{sessions: map[string]*domainauth.Session{}},
		email:    "admin@afrozonauto.com",
		password: "hunter22",
		session: domainauth.Session{
			ID:        "s-1",
			UserID:    "u-1",
			Email:     "admin@afrozonauto.com",
			FullName:  "Ada Admin",
			Role:      domainauth.RoleAdmin,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func postLogin(h *AuthHandlers, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin_SuccessSetsSessionCookieAndLandsOnRoleDashboard(t *testing.T) {
	h := &AuthHandlers{Svc: newLoginStub()}

	rec := postLogin(h, `{"email":"admin@afrozonauto.com","password":"hunter22"}`)
	resp := rec.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := findCookie(t, resp, SessionCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "s-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	var body struct {
		Authenticated bool           `json:"authenticated"`
		RedirectTo    string         `json:"redirectTo"`
		User          map[string]any `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, domainauth.AdminLandingPath, body.RedirectTo)
	assert.Equal(t, "u-1", body.User["id"])
}

func TestLogin_ConsumesPendingRedirect(t *testing.T) {
	h := &AuthHandlers{Svc: newLoginStub()}

	rec := postLogin(h,
		`{"email":"admin@afrozonauto.com","password":"hunter22"}`,
		&http.Cookie{Name: RedirectCookieName, Value: "/admin/orders?page=2"},
	)
	resp := rec.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		RedirectTo string `json:"redirectTo"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "/admin/orders?page=2", body.RedirectTo)

	// Read-once: the intent cookie is cleared on use.
	cookie := findCookie(t, resp, RedirectCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	h := &AuthHandlers{Svc: newLoginStub()}

	bodies := []string{
		`{"email":"admin@afrozonauto.com","password":"wrong"}`,
		`{"email":"nobody@afrozonauto.com","password":"hunter22"}`,
	}

	var messages []string
	for _, body := range bodies {
		rec := postLogin(h, body)
		resp := rec.Result()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, findCookie(t, resp, SessionCookieName))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		messages = append(messages, payload["message"])
	}

	// Wrong password and unknown account read identically.
	assert.Equal(t, messages[0], messages[1])
}

func TestLogin_ValidationErrorsPerField(t *testing.T) {
	h := &AuthHandlers{Svc: newLoginStub()}

	rec := postLogin(h, `{"email":"not-an-email","password":"abc"}`)
	resp := rec.Result()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "validation_failed", body.Error)
	assert.Equal(t, "Enter a valid email address.", body.Fields["email"])
	assert.Equal(t, "Password must be at least 4 characters.", body.Fields["password"])
}

func TestLogin_FormSubmissionRedirects(t *testing.T) {
	h := &AuthHandlers{Svc: newLoginStub()}

	form := "email=admin%40afrozonauto.com&password=hunter22"
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	resp := rec.Result()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, domainauth.AdminLandingPath, resp.Header.Get("Location"))
	require.NotNil(t, findCookie(t, resp, SessionCookieName))
}

func TestLogout_ClearsSessionAndPendingCookies(t *testing.T) {
	stub := newLoginStub()
	stub.sessions["s-1"] = &stub.session
	h := &AuthHandlers{Svc: stub}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s-1"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	resp := rec.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sessionCookie := findCookie(t, resp, SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.Equal(t, -1, sessionCookie.MaxAge)

	redirectCookie := findCookie(t, resp, RedirectCookieName)
	require.NotNil(t, redirectCookie)
	assert.Equal(t, -1, redirectCookie.MaxAge)

	// Server-side record is gone.
	_, ok := stub.sessions["s-1"]
	assert.False(t, ok)
}

func TestSessionEndpoint(t *testing.T) {
	stub := newLoginStub()
	stub.sessions["s-1"] = &stub.session
	h := &AuthHandlers{Svc: stub}

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		rec := httptest.NewRecorder()
		h.Session(rec, req)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, false, body["authenticated"])
	})

	t.Run("live session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s-1"})
		rec := httptest.NewRecorder()
		h.Session(rec, req)

		var body struct {
			Authenticated bool           `json:"authenticated"`
			User          map[string]any `json:"user"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Authenticated)
		assert.Equal(t, "ADMIN", body.User["role"])
	})

	t.Run("stale cookie cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "gone"})
		rec := httptest.NewRecorder()
		h.Session(rec, req)

		resp := rec.Result()
		cookie := findCookie(t, resp, SessionCookieName)
		require.NotNil(t, cookie)
		assert.Equal(t, -1, cookie.MaxAge)
	})
}
