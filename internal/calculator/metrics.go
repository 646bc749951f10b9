package calculator

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OTel instruments, initialized once via InitMetrics().
var (
	opsCounter   metric.Int64Counter
	opsHistogram metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge

	httpErrorCounter metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// Prometheus collectors for the history, scraped from /metrics.
var (
	historySizeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "calculator_history_size",
		Help: "Current number of calculations in history",
	})

	historyRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calculator_history_records_total",
		Help: "Total number of calculations appended to history",
	})

	historySavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculator_history_saves_total",
		Help: "History save attempts by outcome",
	}, []string{"outcome"})
)

// InitMetrics registers custom OTel metric instruments for the calculator
// domain. It is safe to call more than once; New calls it. Instruments
// created before observability.InitMetrics are delegated to the provider it
// installs.
func InitMetrics() error {
	metricsOnce.Do(func() {
		metricsErr = initMetrics()
	})
	return metricsErr
}

func initMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculator operations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculator operations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	httpErrorCounter, err = meter.Int64Counter("calculator.http.errors.total",
		metric.WithDescription("Total number of calculator API requests answered with an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating http error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last calculator operation, as float64"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
