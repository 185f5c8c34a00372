package usecase

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/config"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newIdentifierGenerator,
	newBatchResolver,
	newStatusEngine,
	NewAuthUseCase,
	NewOrderUseCase,
	NewShipmentUseCase,
)

func newIdentifierGenerator(orders repository.OrderRepository, shipments repository.ShipmentRepository) *IdentifierGenerator {
	return NewIdentifierGenerator(orders, shipments)
}

type resolverParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Orders    repository.OrderRepository
	Shipments repository.ShipmentRepository
	IDs       *IdentifierGenerator
	Tracer    trace.Tracer `optional:"true"`
	Meter     metric.Meter `optional:"true"`
}

func newBatchResolver(p resolverParams) *BatchResolver {
	return NewBatchResolver(p.Orders, p.Shipments, p.IDs, p.Logger,
		WithBatchLocation(p.Config.BatchLocation),
		WithBatchTracer(p.Tracer),
		WithBatchMeter(p.Meter),
	)
}

type engineParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Orders    repository.OrderRepository
	Shipments repository.ShipmentRepository
	Sink      AuditSink `optional:"true"`
	Tracer    trace.Tracer `optional:"true"`
	Meter     metric.Meter `optional:"true"`
}

func newStatusEngine(p engineParams) *StatusEngine {
	return NewStatusEngine(p.Orders, p.Shipments, p.Sink, p.Logger,
		WithBulkParallelism(p.Config.WorkerPoolSize),
		WithEngineTracer(p.Tracer),
		WithEngineMeter(p.Meter),
	)
}
