package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestObservability_RecordsJobs(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	obs, err := newWithProvider(provider, "sizing-workers-test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "calculate-size", "completed")
	obs.RecordJobProcessed(ctx, "calculate-size", "failed")
	obs.RecordJobDuration(ctx, "calculate-size", 12*time.Millisecond, "completed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
		if m.Name == "jobs.processed" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			assert.Len(t, sum.DataPoints, 2)
		}
	}
	assert.True(t, names["jobs.processed"])
	assert.True(t, names["jobs.duration"])

	assert.NoError(t, obs.Shutdown(ctx))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	obs.RecordJobProcessed(context.Background(), "calculate-size", "completed")
	obs.RecordJobDuration(context.Background(), "calculate-size", time.Second, "completed")
	assert.NoError(t, obs.Shutdown(context.Background()))
}
