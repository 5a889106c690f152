package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments — initialized once via InitMetrics().
var (
	keystrokeCounter   metric.Int64Counter
	reductionCounter   metric.Int64Counter
	evaluationDuration metric.Float64Histogram
	errorCounter       metric.Int64Counter
	resultGauge        metric.Float64Gauge
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	keystrokeCounter, err = meter.Int64Counter("calculator.keystrokes.total",
		metric.WithDescription("Total number of keypad events applied"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("creating keystroke counter: %w", err)
	}

	reductionCounter, err = meter.Int64Counter("calculator.reductions.total",
		metric.WithDescription("Total number of operators applied during evaluation"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating reduction counter: %w", err)
	}

	evaluationDuration, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of expression evaluation in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last successful evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
