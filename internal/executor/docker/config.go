package docker

import (
	"time"
)

// Config holds the configuration for Docker execution.
type Config struct {
	// Image must provide a node binary on PATH.
	Image string
	// MemoryLimit is the maximum amount of memory the container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs the container can use.
	CPULimit float64
	// PidsLimit caps processes inside the container (fork bombs).
	PidsLimit int64
	// Timeout is the maximum amount of time one run can take.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers to maintain.
	PoolSize int
	// MaxCodeBytes rejects oversized submissions before they reach docker.
	MaxCodeBytes int
	// MaxOutputBytes truncates each of stdout and stderr.
	MaxOutputBytes int
}

// DefaultConfig provides sensible defaults for a node sandbox.
func DefaultConfig() Config {
	return Config{
		Image:          "node:22-alpine",
		MemoryLimit:    128 * 1024 * 1024,
		CPULimit:       0.5,
		PidsLimit:      64,
		Timeout:        5 * time.Second,
		PoolSize:       2,
		MaxCodeBytes:   16 << 10,
		MaxOutputBytes: 64 << 10,
	}
}
