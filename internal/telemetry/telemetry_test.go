package telemetry

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
	"go.opentelemetry.io/otel/trace/noop"

	"prioq/internal/report"
	"prioq/internal/sched"
)

// recordSpans installs a recording provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "prioq", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestSchedule_Span(t *testing.T) {
	sr := recordSpans(t)

	rep := report.New("run-1", sched.New().Schedule([]*sched.Task{
		sched.NewTask("a", 2, 0, sched.WithExecutionTime(3), sched.WithDeadline(1)),
		sched.NewTask("b", 1, 0, sched.WithExecutionTime(2)),
	}))
	_, span := StartSchedule(context.Background(), "w.yaml", 2)
	EndSchedule(span, rep, nil)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "prioq.schedule", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	a := attrs(ended[0])
	assert.Equal(t, "w.yaml", a["prioq.source"].AsString())
	assert.Equal(t, int64(2), a["prioq.tasks"].AsInt64())
	assert.Equal(t, int64(1), a["prioq.deadline_missed"].AsInt64())
	assert.Equal(t, 5.0, a["prioq.makespan"].AsFloat64())
	assert.Equal(t, "run-1", a["prioq.run_id"].AsString())
}

func TestSchedule_SpanError(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartSchedule(context.Background(), "api", 0)
	EndSchedule(span, report.New("", nil), errors.New("boom"))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}
