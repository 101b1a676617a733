package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/tahcohcat/ramadan-tracker/internal/identity"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
	"github.com/tahcohcat/ramadan-tracker/internal/services"
	"go.uber.org/zap"
)

type Handler struct {
	cookies  sessions.Store
	profiles *services.ProfileService
}

func New(cookies sessions.Store, profiles *services.ProfileService) *Handler {
	return &Handler{cookies: cookies, profiles: profiles}
}

type registerResponse struct {
	ID       string          `json:"id"`
	Existing bool            `json:"existing"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

// RegisterHandler creates a profile and remembers its id in the session.
// A session that already points at a live profile is returned as is.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	store := identity.NewSessionStore(h.cookies, w, r)

	if id, ok, _ := store.Get(identity.UserIDKey); ok {
		exists, err := h.profiles.Exists(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if exists {
			writeJSON(w, http.StatusOK, registerResponse{ID: id, Existing: true})
			return
		}
	}

	var req models.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profiles.Register(r.Context(), &req)
	if errors.Is(err, services.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if err != nil {
		logger.New().WithError(err).Error("failed to register profile")
		writeError(w, http.StatusInternalServerError, "Failed to register profile")
		return
	}

	if err := store.Set(identity.UserIDKey, profile.ID); err != nil {
		logger.New().WithError(err).Error("failed to save session")
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	logger.New().With(zap.String("user_id", profile.ID)).Info("profile registered")
	writeJSON(w, http.StatusCreated, registerResponse{ID: profile.ID, Profile: profile})
}

// LogoutHandler forgets the stored user id. The profile itself is kept.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := identity.NewSessionStore(h.cookies, w, r).Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := identity.NewSessionStore(h.cookies, w, r).Get(identity.UserIDKey)
		if err != nil || !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := identity.WithSession(r.Context(), identity.Session{UserID: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
