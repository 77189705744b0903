package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/config"
	"github.com/polkiloo/ordertrack/internal/domain/repository"
)

// Module wires PostgreSQL storage and the prompt repository. Without a
// DATABASE_URI no storage is opened and the repository is nil, which keeps
// the prompted-orders set in memory only.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(newPromptRepository),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	if p.Config.DatabaseURI == "" {
		return nil, nil
	}
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func newPromptRepository(s *Storage, cfg *config.Config) repository.PromptRepository {
	if s == nil {
		return nil
	}
	return s.Prompts(cfg.PromptTTL)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	if storage == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return storage.HealthCheck(ctx)
		},
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
