package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer and meter used across the service.
const InstrumentationName = "github.com/AliXAbdullah03/nge-brain"

// StdoutEndpoint selects the stdout span exporter instead of OTLP.
const StdoutEndpoint = "stdout"

// Options configures the providers.
type Options struct {
	ServiceName string
	// Endpoint is an OTLP/HTTP collector address or StdoutEndpoint. Empty keeps telemetry no-op.
	Endpoint string
	// Writer receives spans when the stdout exporter is selected. Defaults to os.Stdout.
	Writer io.Writer
	Logger *slog.Logger
}

// Providers bundles the tracer and meter providers of the process.
type Providers struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	reader   *sdkmetric.ManualReader
	shutdown func(context.Context) error
}

// Noop returns providers that record nothing.
func Noop() *Providers {
	return &Providers{
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
		shutdown:       func(context.Context) error { return nil },
	}
}

// New configures OpenTelemetry tracing and metrics and installs them as the
// global providers. With an empty endpoint it returns Noop providers.
func New(ctx context.Context, opts Options) (*Providers, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return Noop(), nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", opts.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := newSpanExporter(ctx, endpoint, opts.Writer, logger)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Providers{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		reader:         reader,
		shutdown: func(ctx context.Context) error {
			return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
		},
	}, nil
}

// Tracer returns the service tracer.
func (p *Providers) Tracer() trace.Tracer {
	if p == nil || p.TracerProvider == nil {
		return tracenoop.NewTracerProvider().Tracer(InstrumentationName)
	}
	return p.TracerProvider.Tracer(InstrumentationName)
}

// Meter returns the service meter.
func (p *Providers) Meter() metric.Meter {
	if p == nil || p.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(InstrumentationName)
	}
	return p.MeterProvider.Meter(InstrumentationName)
}

// Reader exposes the manual metric reader, nil for no-op providers.
func (p *Providers) Reader() *sdkmetric.ManualReader {
	return p.reader
}

// Shutdown flushes pending spans and metrics.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

func newSpanExporter(ctx context.Context, endpoint string, w io.Writer, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	if endpoint == StdoutEndpoint {
		return newStdoutExporter(w)
	}

	opts := []otlptracehttp.Option{}
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	logger.Warn("failed to initialize OTLP trace exporter, falling back to stdout", slog.String("error", err.Error()))
	return newStdoutExporter(w)
}

func newStdoutExporter(w io.Writer) (sdktrace.SpanExporter, error) {
	if w == nil {
		w = os.Stdout
	}
	return stdouttrace.New(stdouttrace.WithWriter(w))
}
