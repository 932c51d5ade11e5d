// Package docker runs challenge attempts with node inside throwaway,
// network-less containers.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/shadow-rank/internal/executor"
)

const (
	pullTimeout   = 2 * time.Minute
	truncatedNote = "\n[output truncated]\n"
	timedOutNote  = "\nExecution timed out.\n"
	nodeHeapFlag  = "--max-old-space-size=96"
)

// Executor is an executor.Executor backed by a pool of warm containers.
type Executor struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pool   *warmPool
}

var _ executor.Executor = (*Executor)(nil)

// New connects to the daemon from the environment, pulls the sandbox image
// and starts warming containers.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker: client: %w", err)
	}

	if err := pullImage(cli, cfg.Image, logger); err != nil {
		cli.Close()
		return nil, err
	}

	e := &Executor{
		cli:    cli,
		config: cfg,
		logger: logger,
		pool:   newWarmPool(cli, cfg, logger),
	}
	e.pool.start()
	return e, nil
}

func pullImage(cli *client.Client, ref string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pullTimeout)
	defer cancel()

	logger.Info("pulling sandbox image", slog.String("image", ref))
	rc, err := cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("docker: pull %s: %w", ref, err)
	}
	defer rc.Close()

	// The pull only finishes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("docker: pull %s: %w", ref, err)
	}
	logger.Info("sandbox image ready", slog.String("image", ref))
	return nil
}

// Close removes idle containers and releases the client.
func (e *Executor) Close() error {
	e.pool.stop()
	return e.cli.Close()
}

// Execute runs req.Code with node in a fresh container. Exceeding the
// configured timeout is reported through TimeoutExitCode, not an error.
func (e *Executor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	if limit := e.config.MaxCodeBytes; limit > 0 && len(req.Code) > limit {
		return nil, fmt.Errorf("docker: code is %d bytes, limit is %d", len(req.Code), limit)
	}
	started := time.Now()

	id, err := e.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	// One attempt per container.
	defer e.pool.remove(id)

	runCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	res, err := e.run(runCtx, id, req.Code)
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(started)

	e.logger.Debug("sandbox run finished",
		slog.String("container", shortID(id)),
		slog.Int("exitCode", res.ExitCode),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (e *Executor) run(ctx context.Context, id, code string) (*executor.ExecutionResult, error) {
	created, err := e.cli.ContainerExecCreate(ctx, id, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          []string{"node", nodeHeapFlag, "-e", code},
		Env:          []string{"NODE_OPTIONS=", "HOME=/tmp"},
	})
	if err != nil {
		return nil, fmt.Errorf("docker: exec create: %w", err)
	}

	attached, err := e.cli.ContainerExecAttach(ctx, created.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("docker: exec attach: %w", err)
	}
	defer attached.Close()

	stdout := newCappedBuffer(e.config.MaxOutputBytes)
	stderr := newCappedBuffer(e.config.MaxOutputBytes)

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = stdcopy.StdCopy(stdout, stderr, attached.Reader)
	}()

	res := &executor.ExecutionResult{}
	select {
	case <-copied:
		// ctx may expire between the copy finishing and the inspect.
		inspect, err := e.cli.ContainerExecInspect(context.WithoutCancel(ctx), created.ID)
		if err != nil {
			return nil, fmt.Errorf("docker: exec inspect: %w", err)
		}
		res.ExitCode = inspect.ExitCode
	case <-ctx.Done():
		// Closing the hijacked connection unblocks StdCopy.
		attached.Close()
		<-copied
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("docker: exec: %w", ctx.Err())
		}
		res.ExitCode = executor.TimeoutExitCode
		stderr.note(timedOutNote)
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res, nil
}

// cappedBuffer keeps the first limit bytes written and silently drops the
// rest, so a runaway print loop cannot exhaust server memory.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if c.limit <= 0 {
		return c.buf.Write(p)
	}
	if room := c.limit - c.buf.Len(); room < len(p) {
		c.truncated = true
		if room > 0 {
			c.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) note(s string) { c.buf.WriteString(s) }

func (c *cappedBuffer) String() string {
	if c.truncated {
		return c.buf.String() + truncatedNote
	}
	return c.buf.String()
}
