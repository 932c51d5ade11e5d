// Package config loads server settings from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/executor/docker"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/llm"
	"github.com/sakif/shadow-rank/internal/progression"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// placeholderMarker flags copy-pasted sample values like "your_api_key".
const placeholderMarker = "your_"

type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath    string `env:"DB_PATH" envDefault:"data/shadow-rank.db"`
	JWTSecret string `env:"JWT_SECRET"`

	GitHub   GitHubConfig   `envPrefix:"GITHUB_"`
	AI       AIConfig       `envPrefix:"AI_"`
	Executor ExecutorConfig `envPrefix:"EXECUTOR_"`

	// LevelableSkills may be raised by debugging challenges.
	LevelableSkills []string `env:"LEVELABLE_SKILLS" envSeparator:"," envDefault:"Debugging"`

	DevLoginPasswordHash string `env:"DEV_LOGIN_PASSWORD_HASH"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// OTELEndpoint enables tracing when set (host:port of an OTLP/HTTP collector).
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

type GitHubConfig struct {
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	CallbackURL  string        `env:"CALLBACK_URL"`
	APIURL       string        `env:"API_URL" envDefault:"https://api.github.com"`
	Token        string        `env:"TOKEN"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"10s"`
	RPS          float64       `env:"RPS" envDefault:"5"`
}

type AIConfig struct {
	Enabled    bool          `env:"ENABLED" envDefault:"false"`
	Provider   string        `env:"PROVIDER" envDefault:"openai"`
	BaseURL    string        `env:"BASE_URL"`
	APIKey     string        `env:"API_KEY"`
	Model      string        `env:"MODEL"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"20s"`
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"1"`
}

type ExecutorConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Image    string        `env:"IMAGE" envDefault:"node:22-alpine"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`
	PoolSize int           `env:"POOL_SIZE" envDefault:"2"`
}

// Load reads the optional dotenv files (".env" when none are given), then
// parses and validates the process environment.
func Load(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading dotenv: %w", err)
	}
	cfg, err := parse(env.ToMap(os.Environ()))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.JWTSecret = unlessPlaceholder(cfg.JWTSecret)
	cfg.GitHub.ClientSecret = unlessPlaceholder(cfg.GitHub.ClientSecret)
	cfg.GitHub.Token = unlessPlaceholder(cfg.GitHub.Token)
	cfg.AI.APIKey = unlessPlaceholder(cfg.AI.APIKey)
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	skills := cfg.LevelableSkills[:0]
	for _, s := range cfg.LevelableSkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	cfg.LevelableSkills = skills

	if cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	return cfg, nil
}

func unlessPlaceholder(v string) string {
	if strings.Contains(v, placeholderMarker) {
		return ""
	}
	return v
}

// Validate reports the first setting the server cannot start with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	switch c.AppEnv {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("config: APP_ENV %q must be development, production or test", c.AppEnv)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.DBPath == "" {
		return errors.New("config: DB_PATH must not be empty")
	}
	if len(c.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be set to at least %d characters", auth.MinSecretLength)
	}
	switch llm.Provider(c.AI.Provider) {
	case llm.ProviderOpenAI, llm.ProviderGroq:
	default:
		return fmt.Errorf("config: AI_PROVIDER %q must be openai or groq", c.AI.Provider)
	}
	if c.AI.MaxRetries < 0 {
		return errors.New("config: AI_MAX_RETRIES must not be negative")
	}
	if c.Executor.Enabled && c.Executor.PoolSize < 1 {
		return errors.New("config: EXECUTOR_POOL_SIZE must be at least 1")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return errors.New("config: RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS is set")
	}
	if c.DevLoginPasswordHash != "" {
		if c.IsProduction() {
			return errors.New("config: DEV_LOGIN_PASSWORD_HASH must not be set in production")
		}
		if err := auth.CheckHash(c.DevLoginPasswordHash); err != nil {
			return fmt.Errorf("config: DEV_LOGIN_PASSWORD_HASH: %w", err)
		}
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Levelable returns LEVELABLE_SKILLS as a set of canonical skill names.
func (c Config) Levelable() map[string]bool {
	return progression.LevelableSet(c.LevelableSkills)
}

func (c Config) LLM() llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Enabled = c.AI.Enabled
	cfg.Provider = llm.Provider(c.AI.Provider)
	cfg.BaseURL = c.AI.BaseURL
	cfg.APIKey = c.AI.APIKey
	cfg.Model = c.AI.Model
	cfg.MaxRetries = c.AI.MaxRetries
	if c.AI.Timeout > 0 {
		cfg.Timeout = c.AI.Timeout
	}
	return cfg
}

func (c Config) GitHubClient() github.Config {
	return github.Config{
		BaseURL: c.GitHub.APIURL,
		Token:   c.GitHub.Token,
		Timeout: c.GitHub.Timeout,
		RPS:     c.GitHub.RPS,
	}
}

func (c Config) Docker() docker.Config {
	cfg := docker.DefaultConfig()
	if c.Executor.Image != "" {
		cfg.Image = c.Executor.Image
	}
	if c.Executor.Timeout > 0 {
		cfg.Timeout = c.Executor.Timeout
	}
	cfg.PoolSize = c.Executor.PoolSize
	return cfg
}
