package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tahcohcat/ramadan-tracker/internal/catalog"
	"github.com/tahcohcat/ramadan-tracker/internal/identity"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"github.com/tahcohcat/ramadan-tracker/internal/services"
	"go.uber.org/zap"
)

const (
	defaultCompletionsLimit = 10
	maxCompletionsLimit     = 100
)

type Handler struct {
	catalog          *catalog.Catalog
	completions      *services.CompletionService
	profiles         *services.ProfileService
	leaderboard      *services.LeaderboardService
	leaderboardLimit int
}

func NewHandler(
	cat *catalog.Catalog,
	completions *services.CompletionService,
	profiles *services.ProfileService,
	leaderboard *services.LeaderboardService,
	leaderboardLimit int,
) *Handler {
	return &Handler{
		catalog:          cat,
		completions:      completions,
		profiles:         profiles,
		leaderboard:      leaderboard,
		leaderboardLimit: leaderboardLimit,
	}
}

// RegisterRoutes mounts the API on r, which is expected to sit behind the
// auth middleware.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/activities", h.ListActivities).Methods(http.MethodGet)
	r.HandleFunc("/activities/search", h.SearchActivities).Methods(http.MethodGet)
	r.HandleFunc("/activities/{id}", h.GetActivity).Methods(http.MethodGet)
	r.HandleFunc("/activities/{id}/complete", h.CompleteActivity).Methods(http.MethodPost)
	r.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile/completions", h.ListCompletions).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
}

// GET /api/v1/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities": h.catalog.All(),
	})
}

// GET /api/v1/activities/{id}
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.catalog.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "activity_not_found", "Activity not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// GET /api/v1/activities/search?q=
func (h *Handler) SearchActivities(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, services.KindInvalidRequest, "Query parameter q is required")
		return
	}

	entry, ok := h.catalog.Find(q)
	if !ok {
		writeError(w, http.StatusNotFound, "activity_not_found", "No matching activity")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type completeResponse struct {
	*services.CompletionResult
	Message string `json:"message"`
}

// POST /api/v1/activities/{id}/complete
func (h *Handler) CompleteActivity(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	entry, ok := h.catalog.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "activity_not_found", "Activity not found")
		return
	}

	// a client that disconnects between the profile and leaderboard writes
	// must not cancel the second one; each call keeps its own timeout
	ctx := context.WithoutCancel(r.Context())
	result, err := h.completions.CompleteActivity(ctx, session.UserID, entry.Activity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completeResponse{
		CompletionResult: result,
		Message:          fmt.Sprintf("You earned %d points!", result.Awarded),
	})
}

// GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GET /api/v1/profile/completions?limit=
func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	limit := defaultCompletionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, services.KindInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxCompletionsLimit)
	}

	completions, err := h.profiles.RecentCompletions(r.Context(), session.UserID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"completions": completions,
	})
}

// GET /api/v1/leaderboard?mode=individual|gender
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "individual":
		entries, err := h.leaderboard.Individual(r.Context(), h.leaderboardLimit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := map[string]interface{}{
			"mode":    "individual",
			"entries": entries,
		}
		if session, ok := identity.FromContext(r.Context()); ok {
			if points, err := h.leaderboard.UserPoints(r.Context(), session.UserID); err == nil {
				resp["user_points"] = points
			}
		}
		writeJSON(w, http.StatusOK, resp)

	case "gender":
		agg, err := h.leaderboard.ByGender(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"mode":          "gender",
			"male_points":   agg.MalePoints,
			"female_points": agg.FemalePoints,
		})

	default:
		writeError(w, http.StatusBadRequest, services.KindInvalidRequest, "mode must be individual or gender")
	}
}

// StatusFor maps a service error to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidProfileState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUpdateConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrTransientFetch), errors.Is(err, services.ErrTransientWrite):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrLeaderboardUpdate):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	kind := services.KindOf(err)
	if status >= http.StatusInternalServerError {
		logger.New().WithError(err).With(zap.String("kind", kind)).Error("request failed")
	}
	writeError(w, status, kind, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}
