package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

const (
	createTimeout = 10 * time.Second
	removeTimeout = 5 * time.Second
	maxBackoff    = 30 * time.Second
)

// sandboxLabels tag every container we start so stragglers from a crashed
// process can be found with `docker ps --filter label=app=shadow-rank`.
var sandboxLabels = map[string]string{"app": "shadow-rank", "role": "challenge-sandbox"}

// warmPool keeps PoolSize idle node containers ready. Each container serves
// exactly one attempt and is then removed; taking one wakes the filler so
// the pool refills in the background.
type warmPool struct {
	cli    *client.Client
	config Config
	logger *slog.Logger

	ready  chan string
	wake   chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	closed sync.Once
}

func newWarmPool(cli *client.Client, cfg Config, logger *slog.Logger) *warmPool {
	return &warmPool{
		cli:    cli,
		config: cfg,
		logger: logger,
		ready:  make(chan string, max(cfg.PoolSize, 1)),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (p *warmPool) start() {
	p.once.Do(func() {
		p.logger.Info("warming challenge sandboxes", slog.Int("poolSize", cap(p.ready)))
		p.wg.Add(1)
		go p.fill()
		p.signal()
	})
}

// stop ends the filler and removes every idle container.
func (p *warmPool) stop() {
	p.closed.Do(func() {
		close(p.done)
		p.wg.Wait()
		for {
			select {
			case id := <-p.ready:
				p.remove(id)
			default:
				p.logger.Info("challenge sandboxes removed")
				return
			}
		}
	})
}

// take hands out an idle container, waiting for one if the pool is empty.
func (p *warmPool) take(ctx context.Context) (string, error) {
	select {
	case id := <-p.ready:
		p.signal()
		return id, nil
	case <-ctx.Done():
		return "", fmt.Errorf("docker: waiting for sandbox: %w", ctx.Err())
	case <-p.done:
		return "", fmt.Errorf("docker: sandbox pool is closed")
	}
}

func (p *warmPool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// fill tops the pool up whenever it is woken. Creation failures back off
// exponentially so an unreachable daemon is not hammered.
func (p *warmPool) fill() {
	defer p.wg.Done()

	backoff := time.Second
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}

		for len(p.ready) < cap(p.ready) {
			id, err := p.create()
			if err != nil {
				p.logger.Error("creating sandbox container",
					slog.String("error", err.Error()),
					slog.Duration("retryIn", backoff),
				)
				select {
				case <-time.After(backoff):
					backoff = min(backoff*2, maxBackoff)
					continue
				case <-p.done:
					return
				}
			}
			backoff = time.Second

			select {
			case p.ready <- id:
			case <-p.done:
				p.remove(id)
				return
			}
		}
	}
}

// create starts an idle container on `sleep infinity`; attempts run in it
// through exec.
func (p *warmPool) create() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), createTimeout)
	defer cancel()

	pids := p.config.PidsLimit
	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    p.config.MemoryLimit,
			NanoCPUs:  int64(p.config.CPULimit * 1e9),
			PidsLimit: &pids,
		},
		ReadonlyRootfs: true,
		Tmpfs:          map[string]string{"/tmp": "rw,noexec,nosuid,size=16m"},
		CapDrop:        []string{"ALL"},
		SecurityOpt:    []string{"no-new-privileges"},
	}

	resp, err := p.cli.ContainerCreate(ctx, &container.Config{
		Image:      p.config.Image,
		Cmd:        []string{"sleep", "infinity"},
		User:       "nobody",
		WorkingDir: "/tmp",
		Labels:     sandboxLabels,
	}, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("docker: create: %w", err)
	}

	if err := p.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		p.remove(resp.ID)
		return "", fmt.Errorf("docker: start %s: %w", shortID(resp.ID), err)
	}
	return resp.ID, nil
}

func (p *warmPool) remove(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()

	if err := p.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		p.logger.Warn("removing sandbox container",
			slog.String("id", shortID(id)),
			slog.String("error", err.Error()),
		)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
