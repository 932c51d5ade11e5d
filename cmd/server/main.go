// Package main is the entry point for the shadow-rank API server.
//
// The main package stays minimal: read configuration, build every
// dependency once, hand them to internal/server, and block until shutdown.
// All actual logic lives in the imported packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/config"
	"github.com/sakif/shadow-rank/internal/executor"
	"github.com/sakif/shadow-rank/internal/executor/docker"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/handler"
	"github.com/sakif/shadow-rank/internal/intelligence"
	"github.com/sakif/shadow-rank/internal/llm"
	"github.com/sakif/shadow-rank/internal/metrics"
	sqliteRepo "github.com/sakif/shadow-rank/internal/repository/sqlite"
	"github.com/sakif/shadow-rank/internal/server"
	"github.com/sakif/shadow-rank/internal/service"
	"github.com/sakif/shadow-rank/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger writes text in development and JSON in production.
func newLogger(cfg config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel() // validated by config.Load
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// === TRACING ===
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("flushing traces", slog.String("error", err.Error()))
		}
	}()

	// === DATABASE ===
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// === EXTERNAL CLIENTS ===
	m := metrics.New(prometheus.DefaultRegisterer)
	gh := github.NewClient(cfg.GitHubClient(), logger)

	// A nil interface (not a typed nil) makes the generators fall back.
	var ai llm.Client
	if llmCfg := cfg.LLM(); llmCfg.Configured() {
		ai = llm.NewClient(llmCfg, llm.NewLogObserver(logger))
		logger.Info("AI generation enabled",
			slog.String("provider", string(llmCfg.Provider)),
			slog.String("model", llmCfg.ModelName()),
		)
	} else {
		logger.Warn("AI generation disabled, using deterministic fallbacks")
	}

	// Docker is optional: without it challenge attempts answer 503.
	var exec executor.Executor = executor.Disabled{}
	if cfg.Executor.Enabled {
		sandbox, err := docker.New(cfg.Docker(), logger)
		if err != nil {
			logger.Warn("docker executor unavailable, challenge attempts are disabled",
				slog.String("error", err.Error()),
			)
		} else {
			defer sandbox.Close()
			exec = sandbox
		}
	}

	// === AUTH ===
	tokens, err := auth.NewTokenService(cfg.JWTSecret, auth.DefaultTokenTTL)
	if err != nil {
		return err
	}
	provider := auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL, cfg.GitHub.APIURL)
	if !provider.Configured() {
		logger.Warn("GITHUB_CLIENT_ID/SECRET not set, GitHub login is disabled")
	}
	authService := service.NewAuthService(db, tokens, auth.NewPasswordService(),
		service.DevLogin{PasswordHash: cfg.DevLoginPasswordHash}, logger)

	// === SERVICES ===
	levelable := cfg.Levelable()
	skills := service.NewSkillService(db, levelable, m, logger)
	awakening := service.NewAwakeningService(db, gh, intelligence.NewAwakener(ai, m, logger), levelable, logger)
	quests := service.NewQuestService(db, gh, intelligence.NewQuestGenerator(ai, m, logger), m, logger)
	challenges := service.NewChallengeService(exec, skills, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), logger)

	handlers := server.Handlers{
		Auth:      handler.NewAuthHandler(provider, authService, cfg.IsProduction(), logger),
		Profile:   handler.NewProfileHandler(service.NewProfileService(db, logger), logger),
		Awakening: handler.NewAwakeningHandler(awakening, logger),
		Quest:     handler.NewQuestHandler(quests, logger),
		Skill:     handler.NewSkillHandler(skills, logger),
		Goal:      handler.NewGoalHandler(service.NewGoalService(db, logger), logger),
		Challenge: handler.NewChallengeHandler(challenges, logger),
	}

	srv := server.New(server.Config{
		Port:           cfg.Port,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Tracing:        cfg.OTELEndpoint != "",
	}, handlers, tokens, db, m, logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.AppEnv),
		slog.String("database", cfg.DBPath),
		slog.Bool("devLogin", authService.DevLoginEnabled()),
		slog.Bool("tracing", cfg.OTELEndpoint != ""),
	)

	// Start blocks until SIGINT/SIGTERM.
	return srv.Start()
}
