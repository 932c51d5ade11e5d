// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides which URL patterns map to
// which handlers, which middleware runs on which routes, and how the server
// starts and stops. Everything it serves is built in cmd/server and handed
// in, so tests can mount the same router with in-memory dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/handler"
	"github.com/sakif/shadow-rank/internal/metrics"
	"github.com/sakif/shadow-rank/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port           int
	RateLimitRPS   float64 // per caller on mutating /api routes; <= 0 disables
	RateLimitBurst int
	Tracing        bool // wrap the router with otelhttp
}

// Handlers are the HTTP endpoints the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Awakening *handler.AwakeningHandler
	Quest     *handler.QuestHandler
	Skill     *handler.SkillHandler
	Goal      *handler.GoalHandler
	Challenge *handler.ChallengeHandler
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router   *chi.Mux
	config   Config
	logger   *slog.Logger
	tokens   *auth.TokenService
	metrics  *metrics.Metrics
	store    Pinger
	limiter  *middleware.RateLimiter
	handlers Handlers
}

// New builds the router. metrics may be nil, in which case /metrics serves
// the default Prometheus registry and no request metrics are recorded.
func New(cfg Config, h Handlers, tokens *auth.TokenService, store Pinger, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		tokens:   tokens,
		metrics:  m,
		store:    store,
		limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		handlers: h,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: tags the request for the access log
//  2. RealIP: the rate limiter keys anonymous callers by it
//  3. Logger and Metrics: outside Recoverer so a panic still logs as 500
//  4. Recoverer
//
// Every /api route except /api/ranks needs a session; the rate limiter runs
// after RequireAuth so it can key on the user.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	h := s.handlers

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", h.Auth.HandleGitHubLogin)
		r.Get("/github/callback", h.Auth.HandleGitHubCallback)
		r.Post("/logout", h.Auth.HandleLogout)
		r.With(s.limiter.Middleware).Post("/dev-login", h.Auth.HandleDevLogin)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/ranks", h.Profile.HandleRanks)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))
			r.Use(s.limiter.Middleware)

			r.Get("/me", h.Auth.HandleMe)
			r.Get("/profile", h.Profile.HandleProfile)
			r.Get("/leaderboard", h.Profile.HandleLeaderboard)
			r.Post("/awaken", h.Awakening.HandleAwaken)

			r.Route("/quests", func(r chi.Router) {
				r.Post("/submit", h.Quest.HandleSubmit)
				r.Post("/regenerate", h.Quest.HandleRegenerate)
				r.Get("/history", h.Quest.HandleHistory)
			})

			r.Get("/skills", h.Skill.HandleList)
			r.Post("/skills/resume", h.Skill.HandleResume)
			r.Post("/skills/{name}/complete", h.Skill.HandleComplete)

			r.Route("/challenges", func(r chi.Router) {
				r.Get("/random", h.Challenge.HandleRandom)
				r.Get("/{id}", h.Challenge.HandleGet)
				r.Post("/{id}/attempt", h.Challenge.HandleAttempt)
			})

			r.Get("/goal", h.Goal.HandleGet)
			r.Put("/goal", h.Goal.HandlePut)
			r.Delete("/goal", h.Goal.HandleDelete)
		})
	})
}

// handleHealth answers load balancer probes.
//
// HTTP: GET /healthz → 200 {"status":"ok"} or 503 when the store is down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Handler returns the root handler, traced when tracing is enabled.
// Probes and scrapes are not traced.
func (s *Server) Handler() http.Handler {
	if !s.config.Tracing {
		return s.router
	}
	return otelhttp.NewHandler(s.router, "shadow-rank",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds. Closing the store is the caller's job.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // challenge runs and AI calls
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
