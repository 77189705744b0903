package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/matcher"
	"github.com/polkiloo/ordertrack/internal/status"
)

// loadTimeout bounds a shared order fetch once it is detached from the
// caller that started it.
const loadTimeout = 30 * time.Second

// loader collapses concurrent fetches of the same order into one request.
// The shared fetch does not inherit the starting caller's cancellation, so a
// caller that gives up only stops waiting for it.
type loader struct {
	fetcher Fetcher
	timeout time.Duration
	group   singleflight.Group
}

func newLoader(fetcher Fetcher) *loader {
	return &loader{fetcher: fetcher, timeout: loadTimeout}
}

func (l *loader) load(ctx context.Context, id string) (model.Order, error) {
	ch := l.group.DoChan(matcher.Normalize(id).Full, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.fetcher.FetchOrder(fetchCtx, id)
	})
	select {
	case <-ctx.Done():
		return model.Order{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Order{}, res.Err
		}
		return res.Val.(model.Order).Clone(), nil
	}
}

// DetailView tracks a single order. Every relevant event re-fetches the
// order; there is no optimistic path.
type DetailView struct {
	id      string
	loader  *loader
	notices *Notices
	logger  *slog.Logger

	mu      sync.Mutex
	order   *model.Order
	seq     uint64
	applied uint64
	closed  bool
}

func newDetailView(id string, l *loader, notices *Notices, logger *slog.Logger) *DetailView {
	return &DetailView{id: id, loader: l, notices: notices, logger: logger}
}

// NewDetailView constructs a detail view for order id.
func NewDetailView(id string, fetcher Fetcher, notices *Notices, logger *slog.Logger) *DetailView {
	return newDetailView(id, newLoader(fetcher), notices, logger)
}

// ID returns the tracked order id.
func (v *DetailView) ID() string {
	return v.id
}

// Order returns the last fetched snapshot.
func (v *DetailView) Order() (model.Order, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.order == nil {
		return model.Order{}, false
	}
	return v.order.Clone(), true
}

// Stages returns the stage flags of the last fetched snapshot.
func (v *DetailView) Stages() []model.StageFlag {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.order == nil {
		return status.Flags("")
	}
	return status.Flags(v.order.Status)
}

// Close stops the view from applying in-flight fetches.
func (v *DetailView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Closed reports whether Close was called.
func (v *DetailView) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Refresh re-fetches the order. A fetch already in flight for the same id is
// joined instead of issuing a second request.
func (v *DetailView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domainErrors.ErrViewClosed
	}
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	order, err := v.loader.load(ctx, v.id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domainErrors.ErrViewClosed
	}
	if err != nil {
		v.logger.Warn("order refresh failed", slog.String("order", v.id), slog.String("error", err.Error()))
		v.notices.Add(v.id, fmt.Sprintf("Could not refresh order #%s.", model.ShortID(v.id)))
		return fmt.Errorf("refresh order %s: %w: %w", v.id, domainErrors.ErrFetchFailure, err)
	}
	if seq < v.applied {
		return nil
	}
	v.applied = seq
	v.order = &order
	return nil
}

// Apply re-fetches the order when the event concerns it.
func (v *DetailView) Apply(ctx context.Context, e event.Event) Outcome {
	if v.Closed() || !matcher.Relevant(v.id, e.Candidate()) {
		return OutcomeIgnored
	}
	if err := v.Refresh(ctx); err != nil {
		if errors.Is(err, domainErrors.ErrViewClosed) {
			return OutcomeIgnored
		}
		return OutcomeFailed
	}
	return OutcomeRefreshed
}
