// Package tracing wires OpenTelemetry into the pipeline: provider setup and
// the span helpers used by the engine and agents.
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
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hupe1980/medmesh/core"
)

// Scope is the instrumentation scope of all MedMesh spans.
const Scope = "medmesh"

// Span names.
const (
	SpanAnalyze  = "medmesh.analyze"
	SpanNode     = "medmesh.node"
	SpanGenerate = "medmesh.llm.generate"
)

// Attribute keys.
const (
	AttrRequestID  = "medmesh.request_id"
	AttrNode       = "medmesh.node"
	AttrTask       = "medmesh.task"
	AttrModel      = "medmesh.llm.model"
	AttrImages     = "medmesh.llm.images"
	AttrRepairTier = "medmesh.repair.tier"
	AttrStatus     = "medmesh.status"
)

// Config configures the tracer provider.
type Config struct {
	Enabled        bool    `mapstructure:"enabled"`
	Endpoint       string  `mapstructure:"endpoint"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
}

// Provider owns the installed tracer provider.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewProvider installs a global tracer provider. When tracing is disabled a
// noop provider is installed and Shutdown is a no-op.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return &Provider{tracer: tp.Tracer(Scope)}, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "medmesh"
	}

	if cfg.SampleRate <= 0 || cfg.SampleRate > 1.0 {
		cfg.SampleRate = 1.0
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)

	return &Provider{provider: tp, tracer: tp.Tracer(Scope)}, nil
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Start opens a span on the global tracer, tagging it with the request ID
// carried by ctx.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if id := core.RequestIDFrom(ctx); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	return otel.Tracer(Scope).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span and closes it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrStatus, "error"))
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.String(AttrStatus, "success"))
	}
	span.End()
}

// EndState closes a node span using the terminal state of the node.
func EndState(span trace.Span, s core.State) {
	span.SetAttributes(attribute.String(AttrTask, s.Task.String()))
	if s.Failed() {
		span.SetStatus(codes.Error, s.Error)
		span.SetAttributes(attribute.String(AttrStatus, "error"))
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.String(AttrStatus, "success"))
	}
	span.End()
}
