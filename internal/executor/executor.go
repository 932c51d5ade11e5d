// Package executor runs untrusted challenge code in isolation.
package executor

import (
	"context"
	"errors"
	"time"
)

// TimeoutExitCode is reported when execution exceeded its time limit,
// mirroring the unix timeout command.
const TimeoutExitCode = 124

// ErrDisabled is returned by executors that cannot run code in this
// deployment.
var ErrDisabled = errors.New("executor: code execution is disabled")

// ExecutionRequest is a JavaScript program to run with node.
type ExecutionRequest struct {
	Code string `json:"code"`
}

// ExecutionResult represents the output and status of the code execution.
type ExecutionResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// TimedOut reports whether the run was cut off.
func (r *ExecutionResult) TimedOut() bool {
	return r.ExitCode == TimeoutExitCode
}

// Executor represents the core interface for running code in an isolated environment.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

// Disabled is the Executor used when no sandbox is configured.
type Disabled struct{}

func (Disabled) Execute(context.Context, ExecutionRequest) (*ExecutionResult, error) {
	return nil, ErrDisabled
}
