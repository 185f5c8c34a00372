package events

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/config"
)

// Module exposes the status event publisher to the fx graph.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) Publisher {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka brokers not configured, status events disabled")
		return NopPublisher{}
	}
	producer := NewKafkaProducer(p.Config.KafkaBrokers, p.Config.KafkaStatusTopic, p.Logger)
	p.Lifecycle.Append(fx.StopHook(producer.Close))
	return producer
}
