package usecase

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
)

const instrumentationName = "github.com/AliXAbdullah03/nge-brain/internal/usecase"

func noopTracer() trace.Tracer {
	return tracenoop.NewTracerProvider().Tracer(instrumentationName)
}

func noopMeter() metric.Meter {
	return metricnoop.NewMeterProvider().Meter(instrumentationName)
}

// int64Counter creates a counter, falling back to a no-op one when the meter refuses.
func int64Counter(m metric.Meter, name, description string) metric.Int64Counter {
	counter, err := m.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		counter, _ = noopMeter().Int64Counter(name)
	}
	return counter
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// rejectionReason classifies an engine error for the rejection counter.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, domainErrors.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, domainErrors.ErrValidation):
		return "validation"
	case errors.Is(err, domainErrors.ErrPersistenceIntegrity):
		return "integrity"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "store"
	}
}

func reasonAttr(err error) metric.AddOption {
	return metric.WithAttributes(attribute.String("reason", rejectionReason(err)))
}
