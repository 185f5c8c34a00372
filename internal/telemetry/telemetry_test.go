package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewWithoutEndpointIsNoop(t *testing.T) {
	providers, err := New(context.Background(), Options{ServiceName: "test"})
	require.NoError(t, err)

	assert.Nil(t, providers.Reader())
	_, span := providers.Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestNewStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	providers, err := New(context.Background(), Options{ServiceName: "test", Endpoint: StdoutEndpoint, Writer: &buf})
	require.NoError(t, err)

	_, span := providers.Tracer().Start(context.Background(), "StatusEngine.TransitionOrder")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "StatusEngine.TransitionOrder")
}

func TestMeterRecordsIntoManualReader(t *testing.T) {
	providers, err := New(context.Background(), Options{ServiceName: "test", Endpoint: StdoutEndpoint, Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	counter, err := providers.Meter().Int64Counter("status_engine.transitions")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, providers.Reader().Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestNewOTLPExporter(t *testing.T) {
	for _, endpoint := range []string{"localhost:4318", "http://localhost:4318"} {
		t.Run(endpoint, func(t *testing.T) {
			providers, err := New(context.Background(), Options{ServiceName: "test", Endpoint: endpoint})
			require.NoError(t, err)
			assert.NotNil(t, providers.Reader())
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestNilProvidersFallBackToNoop(t *testing.T) {
	var providers *Providers
	assert.NotNil(t, providers.Tracer())
	assert.NotNil(t, providers.Meter())
	assert.NoError(t, providers.Shutdown(context.Background()))
}
