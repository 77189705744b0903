package backend

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/config"
	"github.com/polkiloo/ordertrack/internal/normalize"
	"github.com/polkiloo/ordertrack/internal/reconcile"
)

// Module exposes the backend client and the reconciliation ports it serves.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(
		func(c *Client) reconcile.Fetcher { return c },
		func(c *Client) reconcile.Actions { return c },
	),
)

type clientParams struct {
	fx.In

	Config     *config.Config
	Normalizer *normalize.Normalizer
	Logger     *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(p.Config.BackendAddress, p.Config.RequestTimeout, p.Config.FetchRetries, p.Normalizer, p.Logger)
}
