package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module exposes the configuration loader for fx graphs and logs the
// effective settings once the logger is available.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logEffective),
)

func logEffective(cfg *Config, logger *slog.Logger) {
	logger.Info("configuration loaded", cfg.LogAttrs()...)
}

// LogAttrs describes cfg for logging. Secrets and credentials are left out.
func (c *Config) LogAttrs() []any {
	return []any{
		slog.String("run_address", c.RunAddress),
		slog.String("backend_address", c.BackendAddress),
		slog.String("event_driver", c.EventDriver),
		slog.Bool("database", c.DatabaseURI != ""),
		slog.Duration("poll_interval", c.PollInterval),
		slog.Int("prompt_capacity", c.PromptCapacity),
		slog.Duration("prompt_ttl", c.PromptTTL),
		slog.Duration("request_timeout", c.RequestTimeout),
		slog.Int("fetch_retries", c.FetchRetries),
		slog.String("log_level", c.LogLevel),
	}
}
