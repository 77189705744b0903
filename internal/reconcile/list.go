package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/matcher"
	"github.com/polkiloo/ordertrack/internal/status"
)

// ListView holds a sequence of orders for one scope. Relevant status and rider
// events patch entries in place; everything else that concerns the list
// triggers a full re-fetch, and a fetch result always replaces patched entries.
type ListView struct {
	scope   model.Scope
	fetcher Fetcher
	notices *Notices
	logger  *slog.Logger
	keep    func(model.Order) bool

	mu      sync.Mutex
	entries []Entry
	seq     uint64
	applied uint64
	loaded  bool
	closed  bool
}

// NewListView constructs an empty list view for scope.
func NewListView(scope model.Scope, fetcher Fetcher, notices *Notices, logger *slog.Logger) *ListView {
	v := &ListView{
		scope:   scope,
		fetcher: fetcher,
		notices: notices,
		logger:  logger,
	}
	if scope == model.ScopeAvailable {
		v.keep = awaitingRider
	}
	return v
}

// awaitingRider reports whether an order can be offered to riders.
func awaitingRider(o model.Order) bool {
	return status.Map(o.Status).Status == model.StatusReadyForPickup && !o.HasRider()
}

// Scope returns the list scope.
func (v *ListView) Scope() model.Scope {
	return v.scope
}

// Entries returns a copy of the current entries.
func (v *ListView) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Entry, len(v.entries))
	for i, e := range v.entries {
		out[i] = Entry{Order: e.Order.Clone(), State: e.State}
	}
	return out
}

// Loaded reports whether at least one fetch has been applied.
func (v *ListView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Close stops the view from applying further fetches and events.
func (v *ListView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Refresh re-fetches the list. Results of fetches issued before the last
// applied one are discarded. On failure the entries are kept and a notice is
// recorded.
func (v *ListView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domainErrors.ErrViewClosed
	}
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	orders, err := v.fetcher.FetchOrderList(ctx, v.scope)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domainErrors.ErrViewClosed
	}
	if err != nil {
		v.logger.Warn("order list refresh failed",
			slog.String("scope", string(v.scope)),
			slog.String("error", err.Error()),
		)
		v.notices.Add("", "Could not refresh orders. Showing the last known state.")
		return fmt.Errorf("refresh %s orders: %w: %w", v.scope, domainErrors.ErrFetchFailure, err)
	}
	if seq < v.applied {
		v.logger.Debug("discard stale order list", slog.String("scope", string(v.scope)))
		return nil
	}

	v.applied = seq
	v.loaded = true
	v.entries = v.entries[:0:0]
	for _, o := range orders {
		if v.keep != nil && !v.keep(o) {
			continue
		}
		v.entries = append(v.entries, Entry{Order: o, State: Confirmed})
	}
	return nil
}

// Apply reconciles the view with an event.
func (v *ListView) Apply(ctx context.Context, e event.Event) Outcome {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return OutcomeIgnored
	}
	matched := v.matching(e.Candidate())
	if len(matched) > 0 && e.Patch() {
		changed := false
		for i := len(matched) - 1; i >= 0; i-- {
			if v.patch(matched[i], e) {
				changed = true
			}
		}
		v.mu.Unlock()
		if !changed {
			return OutcomeIgnored
		}
		return OutcomePatched
	}
	refresh := len(matched) > 0 || v.admits(e)
	v.mu.Unlock()

	if !refresh {
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

// Patch applies a local change to the entry with orderID and marks it
// optimistic. It reports whether the entry was found.
func (v *ListView) Patch(orderID string, fn func(*model.Order)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	for i := range v.entries {
		if matcher.Same(v.entries[i].Order.ID, orderID) {
			fn(&v.entries[i].Order)
			v.entries[i].State = Optimistic
			return true
		}
	}
	return false
}

func (v *ListView) matching(c matcher.Candidate) []int {
	var idx []int
	for i := range v.entries {
		if matcher.Relevant(v.entries[i].Order.ID, c) {
			idx = append(idx, i)
		}
	}
	return idx
}

// admits reports whether an event about an order outside the list may change
// the list membership.
func (v *ListView) admits(e event.Event) bool {
	switch v.scope {
	case model.ScopeAvailable:
		if e.ReadyForPickup() || e.Kind == event.KindNewOrder {
			return true
		}
		return e.Status != "" && status.Map(e.Status).Status == model.StatusReadyForPickup && !e.Rider
	case model.ScopeRider:
		return e.Assignment()
	default:
		return e.Kind == event.KindNewOrder
	}
}

// patch must be called with v.mu held. Statuses only move forward; a patch
// that would regress the lifecycle is dropped. An event that names a rider
// without an id still marks the order as taken. patch reports whether the
// entry changed or left the list.
func (v *ListView) patch(i int, e event.Event) bool {
	entry := &v.entries[i]
	changed := false
	if e.Status != "" && e.Status != entry.Order.Status {
		if status.CanAdvance(entry.Order.Status, e.Status) {
			entry.Order.Status = e.Status
			changed = true
		} else {
			v.logger.Debug("drop backward status patch",
				slog.String("order", entry.Order.ID),
				slog.String("from", entry.Order.Status),
				slog.String("to", e.Status),
			)
		}
	}
	switch {
	case e.RiderID != "" && e.RiderID != entry.Order.RiderID:
		entry.Order.RiderID = e.RiderID
		changed = true
	case e.Rider && e.RiderID == "" && !entry.Order.HasRider():
		entry.Order.Rider = &model.Rider{}
		changed = true
	}
	if changed {
		entry.State = Optimistic
	}
	if v.keep != nil && !v.keep(entry.Order) {
		v.entries = append(v.entries[:i], v.entries[i+1:]...)
		return true
	}
	return changed
}
