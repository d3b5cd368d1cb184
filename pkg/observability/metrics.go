package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricGenerationsTotal   = "grammargen.generations.total"
	metricGenerationDuration = "grammargen.generation.duration.seconds"
	metricRulesExpanded      = "grammargen.rules.expanded"

	attrStatus = "status"
	attrKind   = "kind"

	// StatusOK marks a successful generation.
	StatusOK = "ok"
	// StatusError marks a failed generation.
	StatusError = "error"
)

// durationBucketBoundaries covers 1ms to 10s; generation is dominated by file I/O.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// GenerationMetrics holds the instruments recorded by a grammar generation run.
type GenerationMetrics struct {
	generationsTotal   metric.Int64Counter
	generationDuration metric.Float64Histogram
	rulesExpanded      metric.Int64Counter
}

// NewGenerationMetrics creates generation instruments from the given meter.
func NewGenerationMetrics(mt metric.Meter) (*GenerationMetrics, error) {
	total, err := mt.Int64Counter(metricGenerationsTotal,
		metric.WithDescription("Total number of grammar generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricGenerationsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricGenerationDuration,
		metric.WithDescription("Grammar generation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricGenerationDuration, err)
	}

	rules, err := mt.Int64Counter(metricRulesExpanded,
		metric.WithDescription("Number of rules expanded into grammar entries"),
		metric.WithUnit("{rule}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRulesExpanded, err)
	}

	return &GenerationMetrics{
		generationsTotal:   total,
		generationDuration: duration,
		rulesExpanded:      rules,
	}, nil
}

// RecordGeneration records one finished run with its status and duration.
func (gm *GenerationMetrics) RecordGeneration(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	gm.generationsTotal.Add(ctx, 1, attrs)
	gm.generationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRules records the number of expanded comment and expression rules.
func (gm *GenerationMetrics) RecordRules(ctx context.Context, comments, expressions int) {
	gm.rulesExpanded.Add(ctx, int64(comments), metric.WithAttributes(attribute.String(attrKind, "comment")))
	gm.rulesExpanded.Add(ctx, int64(expressions), metric.WithAttributes(attribute.String(attrKind, "expression")))
}
