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
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp, err := newProvider(context.Background(), "bookshelf-test", sdktrace.WithSpanProcessor(rec))
	require.NoError(t, err)

	prev := otel.GetTracerProvider()
	install(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return rec
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracer("bookshelf", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_ParentChild(t *testing.T) {
	rec := setupRecorder(t)

	ctx, parent := StartSpan(context.Background(), "http.request")
	traceID := ExtractTraceID(ctx)
	assert.NotEmpty(t, traceID)

	childCtx, child := StartSpan(ctx, "shelf.Add", attribute.String("shelf", "read"))
	assert.Equal(t, traceID, ExtractTraceID(childCtx))
	child.End()
	parent.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "shelf.Add", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[0].Attributes(), attribute.String("shelf", "read"))
}

func TestEndSpan_RecordsError(t *testing.T) {
	rec := setupRecorder(t)

	_, span := StartSpan(context.Background(), "review.Create")
	EndSpan(span, errors.New("rating out of range"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "rating out of range", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestExtractTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
}
