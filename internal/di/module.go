package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/adapter/backend"
	"github.com/polkiloo/ordertrack/internal/adapter/push"
	"github.com/polkiloo/ordertrack/internal/app"
	"github.com/polkiloo/ordertrack/internal/config"
	"github.com/polkiloo/ordertrack/internal/logger"
	"github.com/polkiloo/ordertrack/internal/pkg/auth"
	"github.com/polkiloo/ordertrack/internal/server/http/router"
	"github.com/polkiloo/ordertrack/internal/session"
	"github.com/polkiloo/ordertrack/internal/storage/postgres"
	"github.com/polkiloo/ordertrack/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		backend.Module,
		push.Module,
		session.Module,
		worker.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
