package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahcohcat/ramadan-tracker/internal/datastore"
	"github.com/tahcohcat/ramadan-tracker/internal/identity"
	"github.com/tahcohcat/ramadan-tracker/internal/services"
)

func newHandler() (*Handler, *datastore.MemoryStore) {
	store := datastore.NewMemoryStore()
	return New(identity.NewCookieStore("test-secret"), services.NewProfileService(store)), store
}

func register(t *testing.T, h *Handler, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.RegisterHandler(w, r)
	return w
}

const signup = `{"first_name":"Amina","last_name":"K","gender":"female","phone_number":"555-0100"}`

func TestRegisterCreatesProfileAndSession(t *testing.T) {
	h, store := newHandler()

	w := register(t, h, signup)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp registerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.Existing)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, int64(0), resp.Profile.Points)

	rec, err := store.GetProfile(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "female", rec.Gender)
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestRegisterReturnsExistingSessionUser(t *testing.T) {
	h, _ := newHandler()

	first := register(t, h, signup)
	require.Equal(t, http.StatusCreated, first.Code)
	var created registerResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))

	again := register(t, h, `{}`, first.Result().Cookies()...)
	require.Equal(t, http.StatusOK, again.Code)

	var resp registerResponse
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &resp))
	assert.True(t, resp.Existing)
	assert.Equal(t, created.ID, resp.ID)
}

func TestRegisterRejectsIncompleteSignup(t *testing.T) {
	h, _ := newHandler()

	w := register(t, h, `{"first_name":"Omar","gender":"male"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = register(t, h, `{"first_name":"Omar","last_name":"S","gender":"robot","phone_number":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = register(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	h, _ := newHandler()

	var seen string
	protected := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := identity.FromContext(r.Context())
		require.True(t, ok)
		seen = s.UserID
	}))

	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	reg := register(t, h, signup)
	var created registerResponse
	require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &created))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	for _, c := range reg.Result().Cookies() {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, seen)
}

func TestLogoutClearsSession(t *testing.T) {
	h, _ := newHandler()
	reg := register(t, h, signup)

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range reg.Result().Cookies() {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.LogoutHandler(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].MaxAge < 0)
}
