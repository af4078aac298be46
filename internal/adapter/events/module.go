package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module provides the order event publisher.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) usecase.EventPublisher {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka brokers not set, order events disabled")
		return NopPublisher{}
	}
	pub := NewKafkaPublisher(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Config.ServiceName,
		p.Logger.With(slog.String("component", "kafka")))
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			pub.Start()
			return nil
		},
		OnStop: pub.Close,
	})
	return pub
}
