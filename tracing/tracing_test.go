package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hupe1980/medmesh/core"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

func TestStartEnd(t *testing.T) {
	rec := installRecorder(t)

	ctx := core.WithRequestID(context.Background(), "req-42")
	_, span := Start(ctx, SpanGenerate, attribute.String(AttrModel, "mock"))
	End(span, errors.New("boom"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanGenerate, spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "req-42", attrs[AttrRequestID])
	assert.Equal(t, "mock", attrs[AttrModel])
	assert.Equal(t, "error", attrs[AttrStatus])
}

func TestEndState(t *testing.T) {
	rec := installRecorder(t)

	_, span := Start(context.Background(), SpanNode)
	EndState(span, core.State{Task: core.TaskSOAP, Result: map[string]any{}})

	spans := rec.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "soap", attrs[AttrTask])
	assert.Equal(t, "success", attrs[AttrStatus])
	assert.NotContains(t, attrs, AttrRequestID)
}

func TestNewProviderDisabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	p, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}
