package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/polkiloo/ordertrack/internal/adapter/push"
	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/event"
)

// Dispatcher receives decoded events.
type Dispatcher interface {
	Dispatch(ctx context.Context, e event.Event)
}

// EventPump drains push channel streams, decodes each message and hands it
// to the dispatcher. Messages of one stream are applied in arrival order.
type EventPump struct {
	decoder *event.Decoder
	target  Dispatcher
	logger  *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewEventPump constructs EventPump.
func NewEventPump(decoder *event.Decoder, target Dispatcher, logger *slog.Logger) *EventPump {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventPump{
		decoder: decoder,
		target:  target,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Attach starts draining stream until it is closed or the pump stops.
func (p *EventPump) Attach(stream <-chan push.Message) {
	if stream == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.wg.Add(1)
	go p.drain(p.ctx, stream)
}

// Stop cancels in-flight dispatches and waits for every drain to return.
func (p *EventPump) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *EventPump) drain(ctx context.Context, stream <-chan push.Message) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-stream:
			if !ok {
				return
			}
			p.handle(ctx, msg)
		}
	}
}

func (p *EventPump) handle(ctx context.Context, msg push.Message) {
	e, err := p.decoder.Decode(msg.Name, msg.Payload)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUnknownEvent) {
			p.logger.Debug("ignore unknown event", slog.String("event", msg.Name))
			return
		}
		p.logger.Warn("drop undecodable event", slog.String("event", msg.Name), slog.String("error", err.Error()))
		return
	}
	p.target.Dispatch(ctx, e)
}
