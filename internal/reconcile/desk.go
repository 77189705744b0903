package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/status"
)

// Accept steps, as reported by PartialActionError.
const (
	StepAssignRider  = "assign rider"
	StepUpdateStatus = "update status"
)

// RiderDesk runs the rider workflow: the list of orders waiting for pickup,
// accept/decline prompts for newly ready orders, and the accept action.
// Polling and push events both end up in the same re-evaluation.
type RiderDesk struct {
	loader  *loader
	fetcher Fetcher
	actions Actions
	tracker *PromptTracker
	notices *Notices
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	riderID   string
	available *ListView
	pending   map[string]model.Prompt
	order     []string
}

func newRiderDesk(l *loader, fetcher Fetcher, actions Actions, tracker *PromptTracker, notices *Notices, logger *slog.Logger) *RiderDesk {
	return &RiderDesk{
		loader:  l,
		fetcher: fetcher,
		actions: actions,
		tracker: tracker,
		notices: notices,
		logger:  logger,
		now:     time.Now,
		pending: make(map[string]model.Prompt),
	}
}

// NewRiderDesk constructs a closed desk; call Open once a rider signs in.
func NewRiderDesk(fetcher Fetcher, actions Actions, tracker *PromptTracker, notices *Notices, logger *slog.Logger) *RiderDesk {
	return newRiderDesk(newLoader(fetcher), fetcher, actions, tracker, notices, logger)
}

// Open starts the desk for riderID.
func (d *RiderDesk) Open(riderID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.available != nil {
		d.available.Close()
	}
	d.riderID = riderID
	d.available = NewListView(model.ScopeAvailable, d.fetcher, d.notices, d.logger)
	d.pending = make(map[string]model.Prompt)
	d.order = nil
}

// Close stops the desk and drops pending prompts.
func (d *RiderDesk) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.available != nil {
		d.available.Close()
	}
	d.available = nil
	d.riderID = ""
	d.pending = make(map[string]model.Prompt)
	d.order = nil
}

// Active reports whether a rider is signed in.
func (d *RiderDesk) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.available != nil
}

func (d *RiderDesk) state() (string, *ListView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.riderID, d.available
}

// Available returns the orders waiting for a rider.
func (d *RiderDesk) Available() []Entry {
	_, list := d.state()
	if list == nil {
		return nil
	}
	return list.Entries()
}

// Loaded reports whether the available list has been fetched since Open.
func (d *RiderDesk) Loaded() bool {
	_, list := d.state()
	return list != nil && list.Loaded()
}

// Prompts returns the pending prompts, oldest first.
func (d *RiderDesk) Prompts() []model.Prompt {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Prompt, 0, len(d.order))
	for _, id := range d.order {
		p := d.pending[id]
		p.Order = p.Order.Clone()
		out = append(out, p)
	}
	return out
}

// Reevaluate refreshes the available list and prompts for every order that
// has not been prompted yet. Tracked ids whose order left the list are
// cleared so a later return to READY_FOR_PICKUP prompts again.
func (d *RiderDesk) Reevaluate(ctx context.Context) error {
	_, list := d.state()
	if list == nil {
		return domainErrors.ErrNoSession
	}
	if err := list.Refresh(ctx); err != nil {
		return err
	}

	entries := list.Entries()
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[key(e.Order.ID)] = struct{}{}
	}
	for _, id := range d.tracker.IDs() {
		if _, ok := present[id]; !ok {
			d.withdraw(ctx, id)
		}
	}
	for _, e := range entries {
		d.consider(ctx, e.Order.ID)
	}
	return nil
}

// Apply reconciles the desk with an event.
func (d *RiderDesk) Apply(ctx context.Context, e event.Event) Outcome {
	_, list := d.state()
	if list == nil {
		return OutcomeIgnored
	}
	// A new order or an unidentified pickup announcement may add orders the
	// desk has not seen; re-evaluate the whole list.
	if e.Kind == event.KindNewOrder || (e.OrderID == "" && e.ReadyForPickup()) {
		if err := d.Reevaluate(ctx); err != nil {
			return OutcomeFailed
		}
		return OutcomeRefreshed
	}

	outcome := list.Apply(ctx, e)
	if e.OrderID == "" {
		return outcome
	}

	switch {
	case e.Rider || e.Assignment():
		d.withdraw(ctx, e.OrderID)
	case e.Status != "" && status.Map(e.Status).Status != model.StatusReadyForPickup:
		d.withdraw(ctx, e.OrderID)
	case e.ReadyForPickup() || status.Map(e.Status).Status == model.StatusReadyForPickup:
		if d.consider(ctx, e.OrderID) && outcome == OutcomeIgnored {
			outcome = OutcomeRefreshed
		}
	}
	return outcome
}

// consider surfaces a prompt for id unless one was already surfaced. It
// reports whether a new prompt was added.
func (d *RiderDesk) consider(ctx context.Context, id string) bool {
	if !d.tracker.Mark(ctx, id) {
		return false
	}

	order, err := d.loader.load(ctx, id)
	if err != nil {
		d.tracker.Forget(ctx, id)
		if ctx.Err() != nil {
			return false
		}
		d.logger.Warn("load order for prompt failed", slog.String("order", id), slog.String("error", err.Error()))
		d.notices.Add(id, fmt.Sprintf("Could not load order #%s.", model.ShortID(id)))
		return false
	}
	if !awaitingRider(order) {
		d.tracker.Forget(ctx, id)
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.available == nil {
		return false
	}
	k := key(id)
	if _, ok := d.pending[k]; !ok {
		d.order = append(d.order, k)
	}
	d.pending[k] = model.Prompt{Order: order, CreatedAt: d.now()}
	d.logger.Info("order ready for pickup", slog.String("order", order.ID))
	return true
}

// withdraw clears the prompt state of an order that is no longer actionable.
func (d *RiderDesk) withdraw(ctx context.Context, id string) {
	d.dismiss(id)
	d.tracker.Forget(ctx, id)
}

func (d *RiderDesk) dismiss(id string) bool {
	k := key(id)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pending[k]; !ok {
		return false
	}
	delete(d.pending, k)
	for i, v := range d.order {
		if v == k {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Decline dismisses the prompt. The order stays tracked so it is not
// prompted again until its status changes.
func (d *RiderDesk) Decline(_ context.Context, id string) error {
	if !d.dismiss(id) {
		return fmt.Errorf("prompt %s: %w", id, domainErrors.ErrNotFound)
	}
	return nil
}

// Accept assigns the signed-in rider and moves the order out for delivery.
// The available list is patched immediately; a failure of either call forces
// a re-fetch so the list reflects what the backend committed.
func (d *RiderDesk) Accept(ctx context.Context, id string) error {
	riderID, list := d.state()
	if list == nil || riderID == "" {
		return domainErrors.ErrNoSession
	}

	d.dismiss(id)
	list.Patch(id, func(o *model.Order) {
		o.RiderID = riderID
		o.Status = string(model.StatusOutForDelivery)
	})

	if err := d.actions.AssignRider(ctx, id, riderID); err != nil {
		return d.acceptFailed(ctx, list, id, StepAssignRider, err, false)
	}
	if err := d.actions.UpdateOrderStatus(ctx, id, string(model.StatusOutForDelivery)); err != nil {
		return d.acceptFailed(ctx, list, id, StepUpdateStatus, err, true)
	}

	d.tracker.Forget(ctx, id)
	d.logger.Info("order accepted", slog.String("order", id), slog.String("rider", riderID))
	if err := list.Refresh(ctx); err != nil {
		d.logger.Warn("confirm accepted order failed", slog.String("order", id), slog.String("error", err.Error()))
	}
	return nil
}

func (d *RiderDesk) acceptFailed(ctx context.Context, list *ListView, id, step string, err error, partial bool) error {
	d.logger.Error("accept order failed",
		slog.String("order", id),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
	d.notices.Add(id, fmt.Sprintf("Could not accept order #%s.", model.ShortID(id)))
	if rerr := list.Refresh(ctx); rerr != nil {
		d.logger.Warn("refresh after failed accept failed", slog.String("order", id), slog.String("error", rerr.Error()))
	}
	if partial {
		return &domainErrors.PartialActionError{OrderID: id, Step: step, Err: err}
	}
	return fmt.Errorf("accept order %s: %s: %w", id, step, err)
}
