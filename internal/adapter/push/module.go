package push

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/ordertrack/internal/config"
)

// Module provides the push channel selected by configuration.
var Module = fx.Provide(newChannel)

type channelParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newChannel(p channelParams) Channel {
	switch p.Config.EventDriver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     p.Config.RedisAddress,
			Password: p.Config.RedisPassword,
			DB:       p.Config.RedisDB,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return NewRedis(client, p.Config.RedisChannel, p.Logger)
	case config.DriverAMQP:
		return NewAMQP(p.Config.AMQPURL, p.Config.AMQPExchange, p.Logger)
	default:
		return NewMemory()
	}
}
