// internal/common/observability/tracing_test.go
package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestStartSpan_ExportsSpansWithStatus(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	exporter := tracetest.NewInMemoryExporter()
	o := &Observability{serviceName: "test-service"}
	require.NoError(t, o.enableTracingWith(exporter, 1.0))

	ctx := context.Background()
	_, ok := StartSpan(ctx, "pipeline.calculations", attribute.String("record.id", "r-1"))
	EndSpan(ok, nil)

	_, failing := StartSpan(ctx, "pipeline.email")
	EndSpan(failing, errors.New("ses rejected"))

	require.NoError(t, o.tracerProvider.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "pipeline.calculations", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("record.id", "r-1"))
	assert.Equal(t, "pipeline.email", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "ses rejected", spans[1].Status.Description)

	o.Shutdown()
}

func TestStartSpan_NoopWithoutProvider(t *testing.T) {
	otel.SetTracerProvider(noop.NewTracerProvider())

	ctx, span := StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	EndSpan(span, errors.New("ignored"))
}

func TestRecordersToleratePartialInit(t *testing.T) {
	o := &Observability{}
	o.RecordJobProcessed(context.Background(), "success")
	o.RecordJobDuration(context.Background(), 0, "success")
	o.Shutdown()
}
