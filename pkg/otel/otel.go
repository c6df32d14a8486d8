// Package otel wires OpenTelemetry tracing for the service.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"orderdesk/pkg/logger"
)

// Config defines the tracing setup.
type Config struct {
	ServiceName string
	Host        string
	Probability float64
}

// InitTracing installs the global tracer provider. With no Host configured
// spans are created but never exported.
func InitTracing(log *logger.Logger, cfg Config) (trace.TracerProvider, func(context.Context), error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if cfg.Host == "" {
		log.Info(context.Background(), "tracing disabled", "reason", "no OTEL host")
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) {}, nil
	}

	exporter, err := otlptracegrpc.New(
		context.Background(),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(cfg.Host),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Probability))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info(context.Background(), "tracing enabled", "host", cfg.Host, "probability", cfg.Probability)

	shutdown := func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error(ctx, "tracer shutdown", "error", err)
		}
	}
	return tp, shutdown, nil
}

type tracerKey struct{}

// InjectTracing extracts any incoming trace context and stores tracer for
// AddSpan.
func InjectTracing(ctx context.Context, tracer trace.Tracer, carrier propagation.TextMapCarrier) context.Context {
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	return context.WithValue(ctx, tracerKey{}, tracer)
}

// AddSpan starts a span named spanName using the tracer stored in ctx, or
// the global provider when there is none.
func AddSpan(ctx context.Context, spanName string, keyValues ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer, ok := ctx.Value(tracerKey{}).(trace.Tracer)
	if !ok || tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("orderdesk")
	}
	ctx, span := tracer.Start(ctx, spanName)
	span.SetAttributes(keyValues...)
	return ctx, span
}

// GetTraceID returns the trace id carried by ctx, or an empty string.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
