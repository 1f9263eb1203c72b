// Package tracing configures OpenTelemetry span export.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/weldsafe/internal/logger"
)

// ServiceName is reported as the OTel service.name resource attribute.
const ServiceName = "weldsafe"

const instrumentation = "github.com/custodia-labs/weldsafe"

// Options configures span export.
type Options struct {
	// Enabled turns export on. When false Init installs nothing.
	Enabled bool

	// Endpoint is the OTLP HTTP collector, host:port.
	Endpoint string

	// Version is recorded as service.version.
	Version string
}

// Init installs a global tracer provider exporting over OTLP HTTP.
// The returned function flushes and stops the exporter.
func Init(ctx context.Context, opts Options) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !opts.Enabled {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(opts.Version),
		)),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled (endpoint: %s)", opts.Endpoint)

	return tp.Shutdown, nil
}

// Start opens a span on the global tracer. Without Init it is a no-op span.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
