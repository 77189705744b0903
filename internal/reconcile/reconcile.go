// Package reconcile keeps displayed order state consistent with the backend
// while events and polling results arrive concurrently. Views never surface
// transport failures as errors of state: a failed fetch keeps the last known
// snapshot and records a dismissible notice.
package reconcile

import (
	"context"

	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/event"
)

// Fetcher loads authoritative order snapshots.
type Fetcher interface {
	FetchOrder(ctx context.Context, id string) (model.Order, error)
	FetchOrderList(ctx context.Context, scope model.Scope) ([]model.Order, error)
}

// Actions mutates orders on the backend.
type Actions interface {
	AssignRider(ctx context.Context, orderID, riderID string) error
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// Listener observes every dispatched event.
type Listener interface {
	Record(e event.Event)
}

// Outcome is what a view did with an event.
type Outcome int

const (
	// OutcomeIgnored means the event did not concern the view.
	OutcomeIgnored Outcome = iota
	// OutcomePatched means the view was updated in place without a network call.
	OutcomePatched
	// OutcomeRefreshed means the view re-fetched its state.
	OutcomeRefreshed
	// OutcomeFailed means a re-fetch was attempted and failed; state is stale.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePatched:
		return "patched"
	case OutcomeRefreshed:
		return "refreshed"
	case OutcomeFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// EntryState distinguishes locally patched entries from fetched ones.
type EntryState int

const (
	// Confirmed entries come straight from a fetch.
	Confirmed EntryState = iota
	// Optimistic entries carry a local patch awaiting the next fetch.
	Optimistic
)

func (s EntryState) String() string {
	if s == Optimistic {
		return "optimistic"
	}
	return "confirmed"
}

// Entry is one order of a list view.
type Entry struct {
	Order model.Order
	State EntryState
}
