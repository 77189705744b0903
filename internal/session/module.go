package session

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/adapter/backend"
	"github.com/polkiloo/ordertrack/internal/adapter/push"
	"github.com/polkiloo/ordertrack/internal/notification"
	"github.com/polkiloo/ordertrack/internal/pkg/auth"
	"github.com/polkiloo/ordertrack/internal/reconcile"
)

// Module provides the session manager.
var Module = fx.Options(
	fx.Provide(func(c *backend.Client) Backend { return c }),
	fx.Provide(newManager),
)

type managerParams struct {
	fx.In

	Backend  Backend
	Channel  push.Channel
	Pump     Pump
	Hub      *reconcile.Hub
	Tracker  *reconcile.PromptTracker
	Inbox    *notification.Inbox
	Strategy auth.Strategy
	Logger   *slog.Logger
}

func newManager(p managerParams) *Manager {
	return NewManager(Deps{
		Backend:  p.Backend,
		Channel:  p.Channel,
		Pump:     p.Pump,
		Hub:      p.Hub,
		Tracker:  p.Tracker,
		Inbox:    p.Inbox,
		Strategy: p.Strategy,
		Logger:   p.Logger,
	})
}
