package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/ordertrack/internal/adapter/push"
	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/normalize"
	testhelpers "github.com/polkiloo/ordertrack/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for condition")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewPollerDefaults(t *testing.T) {
	p := NewPoller(0, discardLogger())
	if p.pollInterval != 5*time.Second {
		t.Fatalf("expected default interval, got %s", p.pollInterval)
	}
}

func TestPollerReevaluatesTargets(t *testing.T) {
	ok := &testhelpers.ReevaluatorStub{}
	failing := &testhelpers.ReevaluatorStub{ReevaluateFn: func(context.Context) error {
		return domainErrors.ErrFetchFailure
	}}
	p := NewPoller(5*time.Millisecond, discardLogger(), ok, failing)

	p.Start(context.Background())
	p.Start(context.Background())
	waitFor(t, func() bool { return ok.Calls() >= 2 && failing.Calls() >= 2 })
	p.Stop()

	calls := ok.Calls()
	time.Sleep(20 * time.Millisecond)
	if ok.Calls() != calls {
		t.Fatal("poller kept running after stop")
	}
}

func TestPollerStopsWithContext(t *testing.T) {
	target := &testhelpers.ReevaluatorStub{}
	p := NewPoller(time.Millisecond, discardLogger(), target)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
}

func newPump(target *testhelpers.DispatcherStub) *EventPump {
	logger := discardLogger()
	return NewEventPump(event.NewDecoder(normalize.New(logger)), target, logger)
}

func TestEventPumpDispatchesInOrder(t *testing.T) {
	target := &testhelpers.DispatcherStub{}
	pump := newPump(target)
	defer pump.Stop()

	stream := make(chan push.Message, 4)
	pump.Attach(stream)
	stream <- push.Message{Name: "status_update", Payload: []byte(`{"orderId":"o-1","status":"ACCEPTED"}`)}
	stream <- push.Message{Name: "mystery", Payload: []byte(`{}`)}
	stream <- push.Message{Name: "order_assigned", Payload: []byte(`not json`)}
	stream <- push.Message{Name: "new_order", Payload: []byte(`{"orderId":"o-2"}`)}
	close(stream)

	waitFor(t, func() bool { return len(target.Events()) == 2 })
	events := target.Events()
	if events[0].Kind != event.KindStatusUpdate || events[0].OrderID != "o-1" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Kind != event.KindNewOrder {
		t.Fatalf("unexpected second event %+v", events[1])
	}
}

func TestEventPumpStop(t *testing.T) {
	target := &testhelpers.DispatcherStub{}
	pump := newPump(target)
	stream := make(chan push.Message)
	pump.Attach(stream)
	pump.Attach(nil)

	done := make(chan struct{})
	go func() {
		pump.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return with an open stream")
	}

	pump.Attach(make(chan push.Message))
	if len(target.Events()) != 0 {
		t.Fatal("no events expected")
	}
}

func TestEventPumpWithMemoryChannel(t *testing.T) {
	target := &testhelpers.DispatcherStub{}
	pump := newPump(target)
	defer pump.Stop()

	ch := push.NewMemory()
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	pump.Attach(ch.Messages())
	if !ch.Publish(push.Message{Name: "notification", Payload: []byte(`{"_id":"n-1","orderId":"o-1","message":"hi"}`)}) {
		t.Fatal("publish failed")
	}
	waitFor(t, func() bool { return len(target.Events()) == 1 })
	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if e := target.Events()[0]; e.Kind != event.KindNotification || e.NotificationID != "n-1" {
		t.Fatalf("unexpected event %+v", e)
	}
}
