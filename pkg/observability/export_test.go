package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ResourceFor exposes buildResource to the external test package.
func ResourceFor(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// SampledUnder starts one span with the sampler cfg selects and reports
// whether it was recorded.
func SampledUnder(cfg Config) bool {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(selectSampler(cfg)),
	)

	_, span := tp.Tracer("grammargen-test").Start(context.Background(), "grammargen.generate")
	span.End()

	recorded := len(exporter.GetSpans()) > 0

	if tp.Shutdown(context.Background()) != nil {
		return false
	}

	return recorded
}
