package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/config"
)

// Module provides the providers plus the tracer provider, service tracer and meter.
var Module = fx.Options(
	fx.Provide(newProviders),
	fx.Provide(
		func(p *Providers) trace.TracerProvider { return p.TracerProvider },
		func(p *Providers) trace.Tracer { return p.Tracer() },
		func(p *Providers) metric.Meter { return p.Meter() },
	),
)

type providersParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newProviders(p providersParams) (*Providers, error) {
	providers, err := New(context.Background(), Options{
		ServiceName: p.Config.ServiceName,
		Endpoint:    p.Config.OTLPEndpoint,
		Logger:      p.Logger,
	})
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{OnStop: providers.Shutdown})
	return providers, nil
}
