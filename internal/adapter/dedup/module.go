package dedup

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module provides the notification deduper, backed by Redis when configured.
var Module = fx.Provide(newDeduper)

type deduperParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newDeduper(p deduperParams) usecase.NotificationDeduper {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("redis address not set, notification dedup disabled")
		return NopDeduper{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddress})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})
	return NewRedisDeduper(rdb, p.Config.NotificationDedupTTL)
}
