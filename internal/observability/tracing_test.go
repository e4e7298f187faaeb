package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "spotboard-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSpan_RecordsErrorAndAttributes(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() { Tracer = prev })

	span, ctx := NewSpan(context.Background(), "cascade.location", attribute.Int("location.id", 7))
	require.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("rows", 3))
	span.SetError(nil)
	span.SetError(errors.New("boom"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "cascade.location", ended[0].Name())
	assert.Equal(t, otelcodes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 2)
}

func TestMetrics_Registered(t *testing.T) {
	before := testutil.ToFloat64(CascadeDeletes.WithLabelValues("poster"))
	CascadeDeletes.WithLabelValues("poster").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CascadeDeletes.WithLabelValues("poster")))
}
