package main

import (
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/tahcohcat/ramadan-tracker/config"
	"github.com/tahcohcat/ramadan-tracker/internal/api"
	"github.com/tahcohcat/ramadan-tracker/internal/auth"
	"github.com/tahcohcat/ramadan-tracker/internal/credits"
	"github.com/tahcohcat/ramadan-tracker/internal/websocket"
)

func newRouter(cfg *config.Config, authHandler *auth.Handler, apiHandler *api.Handler, hub *websocket.Hub) *mux.Router {
	r := mux.NewRouter()
	r.Use(api.RequestLogger)

	// Public routes
	r.HandleFunc("/register", authHandler.RegisterHandler).Methods(http.MethodPost)
	r.HandleFunc("/logout", authHandler.LogoutHandler).Methods(http.MethodPost)
	r.HandleFunc("/credits", credits.Handler(filepath.Join(cfg.Server.StaticDir, "images"))).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.Server.StaticDir))))

	// Authenticated routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authHandler.AuthMiddleware)
	api.RegisterRoutes(apiRouter, apiHandler)

	websocket.RegisterRoutes(r, hub, cfg.Cors.AllowedOrigins, authHandler.AuthMiddleware)

	return r
}
