// Package tracing provides OpenTelemetry tracing for scan runs and HTTP
// requests.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the application.
var tracer = otel.Tracer("clankervids")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "scan.source")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// Setup installs a tracer provider and the W3C trace context propagator.
// It returns a shutdown function that flushes pending spans.
func Setup(ctx context.Context) (func(context.Context) error, error) {
	provider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return provider.Shutdown, nil
}
