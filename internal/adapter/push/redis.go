package push

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis receives events over Redis Pub/Sub. It subscribes to the base channel,
// whose messages carry an envelope, and to base:<event> channels, whose suffix
// names the event.
type Redis struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger

	mu   sync.Mutex
	sub  *redis.PubSub
	out  chan Message
	done chan struct{}
	wg   sync.WaitGroup
}

// NewRedis constructs a Redis channel on top of client.
func NewRedis(client redis.UniversalClient, channel string, logger *slog.Logger) *Redis {
	return &Redis{client: client, channel: channel, logger: logger}
}

// Connect subscribes and starts forwarding messages.
func (r *Redis) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return nil
	}

	sub := r.client.PSubscribe(ctx, r.channel, r.channel+":*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.sub = sub
	r.start(sub.Channel())
	r.logger.Info("event channel connected", slog.String("driver", "redis"), slog.String("channel", r.channel))
	return nil
}

// start must be called with r.mu held.
func (r *Redis) start(in <-chan *redis.Message) {
	r.out = make(chan Message, bufferSize)
	r.done = make(chan struct{})
	r.wg.Add(1)
	go r.forward(in, r.out, r.done)
}

func (r *Redis) forward(in <-chan *redis.Message, out chan<- Message, done <-chan struct{}) {
	defer r.wg.Done()
	defer close(out)
	prefix := r.channel + ":"
	for {
		select {
		case <-done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			fallback := ""
			if strings.HasPrefix(msg.Channel, prefix) {
				fallback = strings.TrimPrefix(msg.Channel, prefix)
			}
			m, err := ParseEnvelope([]byte(msg.Payload), fallback)
			if err != nil {
				r.logger.Warn("drop malformed event", slog.String("channel", msg.Channel), slog.String("error", err.Error()))
				continue
			}
			select {
			case out <- m:
			case <-done:
				return
			}
		}
	}
}

// Messages returns the current stream.
func (r *Redis) Messages() <-chan Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out
}

// Close unsubscribes and waits for the forwarder to stop.
func (r *Redis) Close() error {
	r.mu.Lock()
	sub, done := r.sub, r.done
	r.sub, r.done = nil, nil
	r.mu.Unlock()

	if done != nil {
		close(done)
	}
	var err error
	if sub != nil {
		err = sub.Close()
		r.logger.Info("event channel disconnected", slog.String("driver", "redis"))
	}
	r.wg.Wait()
	return err
}
