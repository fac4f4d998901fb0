package pkgtelemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "mulehunter/transfer"

// Metrics records ingestion outcomes.
type Metrics struct {
	ingested        metric.Int64Counter
	scoringFailures metric.Int64Counter
	scoringDuration metric.Float64Histogram
}

// NewMetrics uses the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithProvider(otel.GetMeterProvider())
}

func NewMetricsWithProvider(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(instrumentationName)

	var (
		m   Metrics
		err error
	)

	m.ingested, err = meter.Int64Counter(
		"transactions_ingested_total",
		metric.WithDescription("Transactions persisted, by verdict"),
	)
	if err != nil {
		return nil, err
	}

	m.scoringFailures, err = meter.Int64Counter(
		"scoring_failures_total",
		metric.WithDescription("Risk scorer calls that produced no assessment, by failure kind"),
	)
	if err != nil {
		return nil, err
	}

	m.scoringDuration, err = meter.Float64Histogram(
		"scoring_duration_seconds",
		metric.WithDescription("Time spent waiting for the risk scorer"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordScoring records one scorer call. An empty failure kind means it
// succeeded.
func (m *Metrics) RecordScoring(ctx context.Context, elapsed time.Duration, failure string) {
	outcome := "ok"
	if failure != "" {
		outcome = "failed"
		m.scoringFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", failure)))
	}

	m.scoringDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordIngested(ctx context.Context, verdict string) {
	m.ingested.Add(ctx, 1, metric.WithAttributes(attribute.String("verdict", verdict)))
}
