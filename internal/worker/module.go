package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/config"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/reconcile"
)

// Module provides the poller and the event pump.
var Module = fx.Provide(newPoller, newEventPump)

type pollerParams struct {
	fx.In

	Config *config.Config
	Hub    *reconcile.Hub
	Logger *slog.Logger
}

func newPoller(p pollerParams) *Poller {
	return NewPoller(p.Config.PollInterval, p.Logger, p.Hub)
}

type pumpParams struct {
	fx.In

	Decoder *event.Decoder
	Hub     *reconcile.Hub
	Logger  *slog.Logger
}

func newEventPump(p pumpParams) *EventPump {
	return NewEventPump(p.Decoder, p.Hub, p.Logger)
}
