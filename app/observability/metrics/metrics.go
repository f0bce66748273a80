package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ChatMessagesTotal    metric.Int64Counter
	AIRequestDuration    metric.Float64Histogram
	AIRequestErrorsTotal metric.Int64Counter
	AttractionsExtracted metric.Int64Histogram
	DbQueryErrorsTotal   metric.Int64Counter
	RegisterRequests     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider once.
// Call it after the provider is installed.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter("travel-assistant"))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		appMetrics = m
	})
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	if m.ChatMessagesTotal, err = meter.Int64Counter(
		"chat_messages_total",
		metric.WithDescription("Chat messages handled, by sender"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, err
	}
	if m.AIRequestDuration, err = meter.Float64Histogram(
		"ai_request_duration_seconds",
		metric.WithDescription("Latency of AI provider calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.AIRequestErrorsTotal, err = meter.Int64Counter(
		"ai_request_errors_total",
		metric.WithDescription("Failed AI provider calls"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.AttractionsExtracted, err = meter.Int64Histogram(
		"attractions_extracted",
		metric.WithDescription("Attractions extracted per AI reply"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 4, 5, 10),
	); err != nil {
		return nil, err
	}
	if m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.RegisterRequests, err = meter.Int64Counter(
		"register_requests_total",
		metric.WithDescription("Total number of register requests completed"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the global instruments, initialising them on first use. Before
// a MeterProvider is installed they record into otel's no-op provider.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
