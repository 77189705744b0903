package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/matcher"
)

// Hub owns the open views of a session and fans events out to them.
type Hub struct {
	fetcher   Fetcher
	loader    *loader
	notices   *Notices
	desk      *RiderDesk
	listeners []Listener
	logger    *slog.Logger

	mu      sync.Mutex
	lists   map[model.Scope]*ListView
	details map[string]*DetailView
}

// NewHub constructs Hub.
func NewHub(fetcher Fetcher, actions Actions, tracker *PromptTracker, notices *Notices, logger *slog.Logger, listeners ...Listener) *Hub {
	l := newLoader(fetcher)
	return &Hub{
		fetcher:   fetcher,
		loader:    l,
		notices:   notices,
		desk:      newRiderDesk(l, fetcher, actions, tracker, notices, logger),
		listeners: listeners,
		logger:    logger,
		lists:     make(map[model.Scope]*ListView),
		details:   make(map[string]*DetailView),
	}
}

// Desk returns the rider desk.
func (h *Hub) Desk() *RiderDesk {
	return h.desk
}

// Notices returns the shared notice list.
func (h *Hub) Notices() *Notices {
	return h.notices
}

// List returns the list view for scope, opening it on first use.
func (h *Hub) List(scope model.Scope) *ListView {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.lists[scope]; ok {
		return v
	}
	v := NewListView(scope, h.fetcher, h.notices, h.logger)
	h.lists[scope] = v
	return v
}

// Detail returns the detail view for id, opening it on first use.
func (h *Hub) Detail(id string) *DetailView {
	k := matcher.Normalize(id).Full
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.details[k]; ok {
		return v
	}
	v := newDetailView(id, h.loader, h.notices, h.logger)
	h.details[k] = v
	return v
}

// CloseDetail closes the detail view for id. Fetches that complete afterwards
// are dropped.
func (h *Hub) CloseDetail(id string) bool {
	k := matcher.Normalize(id).Full
	h.mu.Lock()
	v, ok := h.details[k]
	delete(h.details, k)
	h.mu.Unlock()
	if ok {
		v.Close()
	}
	return ok
}

// Reset closes every view and the desk.
func (h *Hub) Reset() {
	h.mu.Lock()
	lists, details := h.lists, h.details
	h.lists = make(map[model.Scope]*ListView)
	h.details = make(map[string]*DetailView)
	h.mu.Unlock()

	for _, v := range lists {
		v.Close()
	}
	for _, v := range details {
		v.Close()
	}
	h.desk.Close()
	h.notices.Clear()
}

// Dispatch applies e to listeners, every open view and the rider desk.
func (h *Hub) Dispatch(ctx context.Context, e event.Event) {
	for _, l := range h.listeners {
		l.Record(e)
	}

	h.mu.Lock()
	lists := make([]*ListView, 0, len(h.lists))
	for _, v := range h.lists {
		lists = append(lists, v)
	}
	details := make([]*DetailView, 0, len(h.details))
	for _, v := range h.details {
		details = append(details, v)
	}
	h.mu.Unlock()

	for _, v := range lists {
		h.trace(e, string(v.Scope()), v.Apply(ctx, e))
	}
	for _, v := range details {
		h.trace(e, "detail", v.Apply(ctx, e))
	}
	if h.desk.Active() {
		h.trace(e, "desk", h.desk.Apply(ctx, e))
	}
}

// Reevaluate re-checks the rider desk. It is the polling entry point.
func (h *Hub) Reevaluate(ctx context.Context) error {
	if !h.desk.Active() {
		return nil
	}
	return h.desk.Reevaluate(ctx)
}

func (h *Hub) trace(e event.Event, view string, o Outcome) {
	if o == OutcomeIgnored {
		return
	}
	h.logger.Debug("event applied",
		slog.String("event", string(e.Kind)),
		slog.String("order", e.OrderID),
		slog.String("view", view),
		slog.String("outcome", o.String()),
	)
}
