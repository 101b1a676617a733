package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/tahcohcat/ramadan-tracker/config"
	"github.com/tahcohcat/ramadan-tracker/internal/api"
	"github.com/tahcohcat/ramadan-tracker/internal/auth"
	"github.com/tahcohcat/ramadan-tracker/internal/catalog"
	"github.com/tahcohcat/ramadan-tracker/internal/database"
	"github.com/tahcohcat/ramadan-tracker/internal/datastore"
	"github.com/tahcohcat/ramadan-tracker/internal/identity"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"github.com/tahcohcat/ramadan-tracker/internal/services"
	"github.com/tahcohcat/ramadan-tracker/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level)
	defer logger.Sync()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("failed to initialize datastore")
		os.Exit(1)
	}
	defer store.Close()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	notifying := datastore.NewNotifyingStore(store, hub)

	// Initialize services
	completions := services.NewCompletionService(notifying,
		services.WithWriteMode(services.WriteMode(cfg.Completion.WriteMode)),
		services.WithTimeout(cfg.DatastoreTimeout()),
	)
	profiles := services.NewProfileService(notifying)
	leaderboard := services.NewLeaderboardService(notifying)

	authHandler := auth.New(identity.NewCookieStore(cfg.Auth.SessionSecret), profiles)
	apiHandler := api.NewHandler(catalog.Default(), completions, profiles, leaderboard, cfg.Leaderboard.Limit)

	r := newRouter(cfg, authHandler, apiHandler, hub)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown did not complete")
		}
	}()

	log.With(
		zap.String("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("write_mode", cfg.Completion.WriteMode),
	).Info("Ramadan tracker server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server failed")
		os.Exit(1)
	}
	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (datastore.Datastore, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return datastore.NewPostgresStore(pool), nil

	case config.DriverMemory:
		logger.New().Warn("using in-memory datastore; data is lost on restart")
		return datastore.NewMemoryStore(), nil

	default:
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err := database.NewDB(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return datastore.NewSQLiteStore(db), nil
	}
}
