package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("refinement-metrics")

// RefinementMetrics provides metrics collection for refinement sessions
type RefinementMetrics struct {
	sessionsStartedCounter    metric.Int64Counter
	sessionsCompletedCounter  metric.Int64Counter
	sessionsFailedCounter     metric.Int64Counter
	generationDurationHistory metric.Float64Histogram
	sessionsActiveGauge       metric.Int64UpDownCounter
}

// NewRefinementMetrics creates a new refinement metrics collector
func NewRefinementMetrics() (*RefinementMetrics, error) {
	sessionsStartedCounter, err := meter.Int64Counter(
		"llm_refinement.sessions.started",
		metric.WithDescription("Total number of refinement sessions started"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	sessionsCompletedCounter, err := meter.Int64Counter(
		"llm_refinement.sessions.completed",
		metric.WithDescription("Total number of refinement sessions completed successfully"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	sessionsFailedCounter, err := meter.Int64Counter(
		"llm_refinement.sessions.failed",
		metric.WithDescription("Total number of refinement sessions that failed"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	generationDurationHistory, err := meter.Float64Histogram(
		"llm_refinement.generation.duration",
		metric.WithDescription("Duration of individual generation calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sessionsActiveGauge, err := meter.Int64UpDownCounter(
		"llm_refinement.sessions.active",
		metric.WithDescription("Number of currently active refinement sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	return &RefinementMetrics{
		sessionsStartedCounter:    sessionsStartedCounter,
		sessionsCompletedCounter:  sessionsCompletedCounter,
		sessionsFailedCounter:     sessionsFailedCounter,
		generationDurationHistory: generationDurationHistory,
		sessionsActiveGauge:       sessionsActiveGauge,
	}, nil
}

// RecordSessionStarted records a new refinement session
func (rm *RefinementMetrics) RecordSessionStarted(ctx context.Context, strategy string) {
	rm.sessionsStartedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
		),
	)
	rm.sessionsActiveGauge.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
		),
	)
}

// RecordSessionCompleted records a successful session completion
func (rm *RefinementMetrics) RecordSessionCompleted(ctx context.Context, strategy string, iterations int, duration time.Duration) {
	rm.sessionsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.Int("iterations", iterations),
		),
	)
	rm.sessionsActiveGauge.Add(ctx, -1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
		),
	)
}

// RecordSessionFailed records a failed session
func (rm *RefinementMetrics) RecordSessionFailed(ctx context.Context, strategy, errorType string, duration time.Duration) {
	rm.sessionsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.String("error.type", errorType),
		),
	)
	rm.sessionsActiveGauge.Add(ctx, -1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
		),
	)
}

// RecordGenerationCall records the duration of one generation call
func (rm *RefinementMetrics) RecordGenerationCall(ctx context.Context, model, phase string, duration time.Duration) {
	rm.generationDurationHistory.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("phase", phase),
		),
	)
}
