package test

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
)

// BackendStub implements the backend fetch and action contracts with
// overridable behaviour and a call log.
type BackendStub struct {
	FetchOrderFn        func(context.Context, string) (model.Order, error)
	FetchOrderListFn    func(context.Context, model.Scope) ([]model.Order, error)
	AssignRiderFn       func(context.Context, string, string) error
	UpdateOrderStatusFn func(context.Context, string, string) error

	mu    sync.Mutex
	calls []string
}

func (s *BackendStub) record(format string, args ...any) {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	s.mu.Unlock()
}

// Calls returns the recorded calls in order.
func (s *BackendStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many recorded calls equal call.
func (s *BackendStub) Count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Reset clears the call log.
func (s *BackendStub) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// FetchOrder delegates to override or reports not found.
func (s *BackendStub) FetchOrder(ctx context.Context, id string) (model.Order, error) {
	s.record("fetchOrder:%s", id)
	if s.FetchOrderFn != nil {
		return s.FetchOrderFn(ctx, id)
	}
	return model.Order{}, domainErrors.ErrNotFound
}

// FetchOrderList delegates to override or returns an empty list.
func (s *BackendStub) FetchOrderList(ctx context.Context, scope model.Scope) ([]model.Order, error) {
	s.record("fetchOrderList:%s", scope)
	if s.FetchOrderListFn != nil {
		return s.FetchOrderListFn(ctx, scope)
	}
	return nil, nil
}

// AssignRider delegates to override or succeeds.
func (s *BackendStub) AssignRider(ctx context.Context, orderID, riderID string) error {
	s.record("assignRider:%s:%s", orderID, riderID)
	if s.AssignRiderFn != nil {
		return s.AssignRiderFn(ctx, orderID, riderID)
	}
	return nil
}

// UpdateOrderStatus delegates to override or succeeds.
func (s *BackendStub) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	s.record("updateStatus:%s:%s", orderID, status)
	if s.UpdateOrderStatusFn != nil {
		return s.UpdateOrderStatusFn(ctx, orderID, status)
	}
	return nil
}
