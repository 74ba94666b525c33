package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures span emission around compile and execute
// calls. Only the stdout exporter is wired; InitTracing takes no other
// sdktrace.SpanExporter.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
	Enabled        bool
}

func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "glint-engine",
		ServiceVersion: "0.1.0",
		SamplingRate:   1.0,
		Enabled:        true,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider used to emit
// compile/execute spans.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// InitTracing initializes tracing with a stdout span exporter, suitable
// for local development.
func InitTracing(config *TracingConfig) (*TracerProvider, error) {
	if config == nil {
		config = DefaultTracingConfig()
	}
	if !config.Enabled {
		return &TracerProvider{provider: sdktrace.NewTracerProvider()}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating stdout span exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SamplingRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &TracerProvider{provider: tp}, nil
}

func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

func tracer() trace.Tracer {
	return otel.Tracer("glint-engine")
}

// TraceCompile wraps a Compile call in a span carrying the compile ID,
// recording the error and an error status on the span when the call
// fails.
func TraceCompile(ctx context.Context, compileID string, fn func(context.Context) (*AST, error)) (*AST, error) {
	ctx, span := tracer().Start(ctx, "engine.compile", trace.WithAttributes(attribute.String("compile.id", compileID)))
	defer span.End()

	ast, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return ast, nil
}

// TraceExecution wraps an Execute call in a span carrying the execution
// ID, recording the outcome.
func TraceExecution(ctx context.Context, executionID string, fn func(context.Context) error) error {
	ctx, span := tracer().Start(ctx, "engine.execute", trace.WithAttributes(attribute.String("execution.id", executionID)))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
