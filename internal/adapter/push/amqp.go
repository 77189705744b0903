package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQP receives events from a RabbitMQ topic exchange through an exclusive,
// auto-deleted queue bound to every routing key. The routing key names the
// event when the body carries no envelope.
type AMQP struct {
	url      string
	exchange string
	logger   *slog.Logger
	dial     func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
	out  chan Message
	done chan struct{}
	wg   sync.WaitGroup
}

// NewAMQP constructs an AMQP channel for exchange.
func NewAMQP(url, exchange string, logger *slog.Logger) *AMQP {
	return &AMQP{url: url, exchange: exchange, logger: logger, dial: amqp.Dial}
}

// Connect dials the broker, declares the exchange and a private queue and
// starts consuming.
func (a *AMQP) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := a.dial(a.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open amqp channel: %w", err)
	}
	deliveries, err := a.declare(ch)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	a.conn, a.ch = conn, ch
	a.start(deliveries)
	a.logger.Info("event channel connected", slog.String("driver", "amqp"), slog.String("exchange", a.exchange))
	return nil
}

func (a *AMQP) declare(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	if err := ch.ExchangeDeclare(a.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", a.exchange, err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "#", a.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return deliveries, nil
}

// start must be called with a.mu held.
func (a *AMQP) start(in <-chan amqp.Delivery) {
	a.out = make(chan Message, bufferSize)
	a.done = make(chan struct{})
	a.wg.Add(1)
	go a.forward(in, a.out, a.done)
}

func (a *AMQP) forward(in <-chan amqp.Delivery, out chan<- Message, done <-chan struct{}) {
	defer a.wg.Done()
	defer close(out)
	for {
		select {
		case <-done:
			return
		case d, ok := <-in:
			if !ok {
				return
			}
			m, err := ParseEnvelope(d.Body, d.RoutingKey)
			if err != nil {
				a.logger.Warn("drop malformed event", slog.String("routing_key", d.RoutingKey), slog.String("error", err.Error()))
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
func (a *AMQP) Messages() <-chan Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out
}

// Close closes the channel and the connection.
func (a *AMQP) Close() error {
	a.mu.Lock()
	conn, ch, done := a.conn, a.ch, a.done
	a.conn, a.ch, a.done = nil, nil, nil
	a.mu.Unlock()

	if done != nil {
		close(done)
	}
	var err error
	if ch != nil {
		err = ch.Close()
	}
	if conn != nil {
		if cerr := conn.Close(); err == nil {
			err = cerr
		}
		a.logger.Info("event channel disconnected", slog.String("driver", "amqp"))
	}
	a.wg.Wait()
	return err
}
