package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Simplici0/pricesense/internal/cache"
	"github.com/Simplici0/pricesense/internal/config"
	"github.com/Simplici0/pricesense/internal/db"
	"github.com/Simplici0/pricesense/internal/logger"
	"github.com/Simplici0/pricesense/internal/migrations"
	"github.com/Simplici0/pricesense/internal/observability"
	"github.com/Simplici0/pricesense/internal/seed"
	"github.com/Simplici0/pricesense/internal/store"
)

const (
	serviceName    = "pricesense"
	serviceVersion = "1.0.0"
)

type server struct {
	log        *zap.Logger
	store      *store.Store
	auth       *authService
	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *observability.Metrics
	validate   *validator.Validate
	corsOrigin string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pricesense: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.IsDev())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database.DB); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	st := store.New(database)
	stats, err := seed.Run(ctx, st, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Demo:          cfg.SeedDemo,
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	log.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	c, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = devJWTSecret
	}

	srv := &server{
		log:        log,
		store:      st,
		auth:       newAuthService(st, secret, cfg.JWTTTL),
		cache:      c,
		cacheTTL:   cfg.CacheTTL,
		metrics:    observability.NewMetrics(cfg.MetricsNamespace),
		validate:   newValidator(),
		corsOrigin: cfg.CORSOrigin,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openCache connects to Redis when configured. Without Redis, or when it
// cannot be reached, dashboard responses are simply not cached.
func openCache(ctx context.Context, cfg config.Config, log *zap.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Noop{}, func() {}
	}

	r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 30*time.Second, log)
	if err != nil {
		log.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
		return cache.Noop{}, func() {}
	}
	return r, func() { _ = r.Close() }
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.middleware)

			r.Get("/auth/profile", s.handleProfile)
			r.Put("/auth/profile", s.handleUpdateProfile)

			r.Post("/analysis/preview", s.handlePreview)
			r.Post("/analysis/create", s.handleCreateAnalysis)
			r.Post("/analysis/compare", s.handleCompare)
			r.Get("/analysis/all", s.handleListAnalyses)
			r.Get("/analysis/{id}", s.handleGetAnalysis)
			r.Delete("/analysis/{id}", s.handleDeleteAnalysis)

			r.Get("/dashboard/overview", s.handleOverview)
			r.Get("/dashboard/trends", s.handleTrends)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "Route not found"})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
	})
}
