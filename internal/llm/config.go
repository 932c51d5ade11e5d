package llm

import (
	"strings"
	"time"
)

// TaskType identifies the kind of generation being performed.
type TaskType string

const (
	TaskAwaken TaskType = "awaken"
	TaskQuest  TaskType = "quest"
)

// Provider names an OpenAI-compatible chat-completions API.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
)

// TaskConfig holds per-task generation parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // overrides Config.Timeout if > 0
}

// Config holds all configuration for the generative text capability.
type Config struct {
	Enabled    bool
	Provider   Provider
	BaseURL    string // empty uses the provider default
	APIKey     string
	Model      string // empty uses the provider default
	Timeout    time.Duration
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns a disabled OpenAI config with the task defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		Provider:   ProviderOpenAI,
		Timeout:    20 * time.Second,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskAwaken: {Temperature: 0.7, MaxTokens: 1000},
			TaskQuest:  {Temperature: 0.8, MaxTokens: 500},
		},
	}
}

// Configured reports whether generation can be attempted at all.
// Keys still holding a "your_..." placeholder count as missing.
func (c Config) Configured() bool {
	return c.Enabled && c.APIKey != "" && !strings.Contains(c.APIKey, "your_")
}

// Endpoint returns the chat-completions URL for the configured provider.
func (c Config) Endpoint() string {
	base := c.BaseURL
	if base == "" {
		switch c.Provider {
		case ProviderGroq:
			base = "https://api.groq.com/openai/v1"
		default:
			base = "https://api.openai.com/v1"
		}
	}
	return strings.TrimRight(base, "/") + "/chat/completions"
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGroq {
		return "llama-3.1-70b-versatile"
	}
	return "gpt-4o-mini"
}

// TaskTimeout returns the effective timeout for a given task type.
func (c Config) TaskTimeout(task TaskType) time.Duration {
	if tc, ok := c.Tasks[task]; ok && tc.Timeout > 0 {
		return tc.Timeout
	}
	return c.Timeout
}
