// Package tracing sets up OpenTelemetry tracing and records span attributes.
package tracing

import (
	"context"
	"errors"
	"net"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdk_trace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/RRWM1rr0rB/uuidattr"

var (
	ErrNewExporter = errors.New("failed to create OTLP exporter")
)

// New installs a global tracer provider exporting over OTLP/HTTP. Callers
// own Shutdown.
func New(ctx context.Context, params ...ConfigParam) (*sdk_trace.TracerProvider, error) {
	cfg := newConfig(params...)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(net.JoinHostPort(cfg.host, cfg.port)),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		return nil, errors.Join(ErrNewExporter, err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, cfg.resource...),
	)
	if err != nil {
		res = resource.NewWithAttributes(semconv.SchemaURL, cfg.resource...)
	}

	provider := sdk_trace.NewTracerProvider(
		sdk_trace.WithBatcher(exporter),
		sdk_trace.WithResource(res),
		sdk_trace.WithSampler(sdk_trace.ParentBased(sdk_trace.TraceIDRatioBased(cfg.sampleRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider, nil
}

// Start creates a new span.
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// Continue starts a child span only when the context already carries a
// recording span; otherwise ctx and its span are returned unchanged.
func Continue(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return ctx, span
	}
	return Start(ctx, name, opts...)
}
