package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
)

// Target is re-evaluated on every poll tick.
type Target interface {
	Reevaluate(ctx context.Context) error
}

// Poller re-evaluates its targets at a fixed interval. It is the fallback
// that keeps the rider desk current when push events are missed.
type Poller struct {
	targets      []Target
	pollInterval time.Duration
	logger       *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPoller constructs Poller.
func NewPoller(pollInterval time.Duration, logger *slog.Logger, targets ...Target) *Poller {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Poller{
		targets:      targets,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start launches the ticker loop. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(runCtx)
}

// Stop waits for the loop to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	for _, t := range p.targets {
		err := t.Reevaluate(ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case errors.Is(err, domainErrors.ErrNoSession), errors.Is(err, domainErrors.ErrViewClosed):
			p.logger.Debug("poll skipped", slog.String("reason", err.Error()))
		default:
			p.logger.Warn("poll failed", slog.String("error", err.Error()))
		}
	}
}
