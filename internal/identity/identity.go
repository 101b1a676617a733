// Package identity holds the locally persisted reference to the user's
// profile. It stores only the opaque user id, never profile data.
package identity

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	UserIDKey   = "user_id"
	SessionName = "ramadan-session"
)

// Store is a small persistent key-value store
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear() error
}

var _ Store = (*SessionStore)(nil)

// NewCookieStore returns the cookie-backed session store used by the server.
func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionStore is a Store bound to one request's cookie session.
type SessionStore struct {
	store sessions.Store
	w     http.ResponseWriter
	r     *http.Request
}

func NewSessionStore(store sessions.Store, w http.ResponseWriter, r *http.Request) *SessionStore {
	return &SessionStore{store: store, w: w, r: r}
}

// Get treats an undecodable cookie as an empty session.
func (s *SessionStore) Get(key string) (string, bool, error) {
	session, err := s.store.Get(s.r, SessionName)
	if err != nil {
		return "", false, nil
	}

	v, ok := session.Values[key].(string)
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (s *SessionStore) Set(key, value string) error {
	session, _ := s.store.Get(s.r, SessionName)
	session.Values[key] = value
	return session.Save(s.r, s.w)
}

func (s *SessionStore) Clear() error {
	session, _ := s.store.Get(s.r, SessionName)
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Options.MaxAge = -1
	return session.Save(s.r, s.w)
}

// Session is the explicit per-request identity handed to handlers.
type Session struct {
	UserID string
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok && s.UserID != ""
}
