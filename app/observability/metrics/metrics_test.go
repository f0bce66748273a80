package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNew_RecordsIntoReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.ChatMessagesTotal.Add(ctx, 2, metric.WithAttributes(attribute.String("sender", "user")))
	m.AttractionsExtracted.Record(ctx, 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}
	assert.True(t, names["chat_messages_total"])
	assert.True(t, names["attractions_extracted"])
}

func TestGet_WithoutProvider(t *testing.T) {
	m := Get()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.DbQueryErrorsTotal.Add(context.Background(), 1)
	})
}
