// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rkohl/conference-central/internal/auth"
	"github.com/rkohl/conference-central/internal/cache"
	"github.com/rkohl/conference-central/internal/config"
	"github.com/rkohl/conference-central/internal/database"
	"github.com/rkohl/conference-central/internal/handler"
	"github.com/rkohl/conference-central/internal/repository"
	"github.com/rkohl/conference-central/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(context.Background(), *configPath, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, log *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ── 1. Connect to PostgreSQL and apply migrations ────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("connected to postgres", "host", cfg.Database.Host)

	if err := database.Migrate(ctx, cfg.Database.DSN(), log); err != nil {
		return err
	}

	// ── 2. Pick the cache backend ────────────────────────────────────────
	var store cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		store = redisCache
		log.Info("using redis cache", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemoryCache()
		log.Info("using in-process cache")
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	conferenceRepo := repository.NewConferenceRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	wishlistRepo := repository.NewWishlistRepository(pool)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration.Std())

	announcementSvc := service.NewAnnouncementService(conferenceRepo, sessionRepo, store, log)
	profileSvc := service.NewProfileService(profileRepo)
	conferenceSvc := service.NewConferenceService(conferenceRepo, profileRepo, registrationRepo, log)
	sessionSvc := service.NewSessionService(sessionRepo, conferenceRepo, profileRepo, wishlistRepo, announcementSvc, log)

	h := handler.New(profileSvc, conferenceSvc, sessionSvc, announcementSvc, tokens)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS)            // permissive CORS for demo

	// Health and public reads
	r.Get("/health", handler.HealthCheck)
	r.Post("/auth/token", h.IssueToken)
	r.Get("/announcement", h.GetAnnouncement)
	r.Post("/announcement/rebuild", h.RebuildAnnouncement)
	r.Get("/speaker/featured", h.GetFeaturedSpeaker)
	r.Get("/conferences/{key}", h.GetConference)
	r.Post("/conferences/query", h.QueryConferences)
	r.Get("/conferences/{key}/sessions", h.ConferenceSessions)
	r.Get("/conferences/{key}/sessions/type/{type}", h.ConferenceSessionsByType)
	r.Post("/sessions/query", h.QuerySessions)
	r.Get("/sessions/speaker/{speaker}", h.SessionsBySpeaker)
	r.Get("/sessions/location/{location}", h.SessionsByLocation)
	r.Get("/sessions/schedule", h.SessionsByDateAndLocation)
	r.Get("/sessions/early-non-workshops", h.EarlyNonWorkshops)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(handler.Authenticate(tokens))

		r.Get("/profile", h.GetProfile)
		r.Post("/profile", h.SaveProfile)
		r.Get("/profile/wishlist", h.Wishlist)

		r.Post("/conferences", h.CreateConference)
		r.Put("/conferences/{key}", h.UpdateConference)
		r.Get("/conferences/created", h.ConferencesCreated)
		r.Get("/conferences/attending", h.ConferencesAttending)
		r.Post("/conferences/{key}/registration", h.Register)
		r.Delete("/conferences/{key}/registration", h.Unregister)

		r.Post("/conferences/{key}/sessions", h.CreateSession)
		r.Post("/sessions/{key}/wishlist", h.AddToWishlist)
		r.Delete("/sessions/{key}/wishlist", h.RemoveFromWishlist)
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Block until SIGINT, SIGTERM or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
