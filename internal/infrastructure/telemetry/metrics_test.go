package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestInvoicingMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := NewInvoicingMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordExtraction(ctx, "super-aki", "ok", 300*time.Millisecond)
	m.RecordExtraction(ctx, "super-aki", "NOT_FOUND", 200*time.Millisecond)
	m.RecordAutomation(ctx, "super-aki", "ok", 5*time.Second)
	m.RecordStateFailure(ctx, "super-aki", "folio_entered")

	got := collect(t, reader)

	extractions, ok := got["facturasnap.extractions"]
	require.True(t, ok)
	sum, ok := extractions.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	latency, ok := got["facturasnap.automation.duration"]
	require.True(t, ok)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	_, ok = got["facturasnap.automation.state_failures"]
	assert.True(t, ok)
}

func TestInvoicingMetrics_NilSafe(t *testing.T) {
	var m *InvoicingMetrics
	assert.NotPanics(t, func() {
		m.RecordExtraction(context.Background(), "x", "ok", time.Second)
		m.RecordAutomation(context.Background(), "x", "ok", time.Second)
		m.RecordStateFailure(context.Background(), "x", "page_loaded")
	})
}
