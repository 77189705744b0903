package test

import (
	"context"
	"sync"

	"github.com/polkiloo/ordertrack/internal/event"
)

// ReevaluatorStub counts poll ticks.
type ReevaluatorStub struct {
	ReevaluateFn func(context.Context) error

	mu    sync.Mutex
	calls int
}

// Reevaluate records the tick and delegates to override.
func (s *ReevaluatorStub) Reevaluate(ctx context.Context) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.ReevaluateFn != nil {
		return s.ReevaluateFn(ctx)
	}
	return nil
}

// Calls returns how many ticks were observed.
func (s *ReevaluatorStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// DispatcherStub records dispatched events.
type DispatcherStub struct {
	DispatchFn func(context.Context, event.Event)

	mu     sync.Mutex
	events []event.Event
}

// Dispatch stores e and delegates to override.
func (s *DispatcherStub) Dispatch(ctx context.Context, e event.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	if s.DispatchFn != nil {
		s.DispatchFn(ctx, e)
	}
}

// Events returns the dispatched events in order.
func (s *DispatcherStub) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.events...)
}
