package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/config"
	"github.com/polkiloo/ordertrack/internal/domain/repository"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/normalize"
	"github.com/polkiloo/ordertrack/internal/notification"
	"github.com/polkiloo/ordertrack/internal/reconcile"
	"github.com/polkiloo/ordertrack/internal/server/http/handlers"
	"github.com/polkiloo/ordertrack/internal/session"
	"github.com/polkiloo/ordertrack/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		normalize.New,
		event.NewDecoder,
		reconcile.NewNotices,
		notification.NewInbox,
		newPromptTracker,
		newHub,
		func(p *worker.EventPump) session.Pump { return p },
		NewTrackerFacade,
		func(f *TrackerFacade) handlers.TrackerFacade { return f },
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type trackerParams struct {
	fx.In

	Config     *config.Config
	Repository repository.PromptRepository `optional:"true"`
	Logger     *slog.Logger
}

func newPromptTracker(p trackerParams) *reconcile.PromptTracker {
	return reconcile.NewPromptTracker(p.Config.PromptCapacity, p.Config.PromptTTL, p.Repository, p.Logger)
}

type hubParams struct {
	fx.In

	Fetcher reconcile.Fetcher
	Actions reconcile.Actions
	Tracker *reconcile.PromptTracker
	Notices *reconcile.Notices
	Inbox   *notification.Inbox
	Logger  *slog.Logger
}

func newHub(p hubParams) *reconcile.Hub {
	return reconcile.NewHub(p.Fetcher, p.Actions, p.Tracker, p.Notices, p.Logger, p.Inbox)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Poller     *worker.Poller
	Pump       *worker.EventPump
	Sessions   *session.Manager
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting ordertrack", slog.String("addr", p.Server.Addr))
			p.Poller.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Poller.Stop()
			p.Sessions.Logout()
			p.Pump.Stop()

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("ordertrack stopped")
			return nil
		},
	})
}
