// Package telemetry sets up OpenTelemetry tracing for prioq.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"prioq/internal/report"
)

// TracerName is the instrumentation name used for every prioq span.
const TracerName = "prioq"

// InitTracer configures the global TracerProvider and propagator.
// endpoint is an OTLP HTTP endpoint such as "localhost:4318"; when it is
// empty spans go to the default no-op provider.
//
// The returned shutdown function flushes pending spans.
func InitTracer(ctx context.Context, serviceName, endpoint string) (shutdown func(), err error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		return func() {}, nil
	}

	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithProcess(),
	)
	if err != nil || res == nil {
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}, nil
}

// StartSchedule opens the span covering one scheduling run.
func StartSchedule(ctx context.Context, source string, tasks int) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "prioq.schedule")
	span.SetAttributes(
		attribute.String("prioq.source", source),
		attribute.Int("prioq.tasks", tasks),
	)
	return ctx, span
}

// EndSchedule records the run outcome on span and ends it. A non-nil err
// marks the span as failed.
func EndSchedule(span trace.Span, rep report.Report, err error) {
	defer span.End()

	st := rep.Statistics
	span.SetAttributes(
		attribute.Int("prioq.completed", st.CompletedTasks),
		attribute.Int("prioq.deadline_missed", st.DeadlineMissed),
		attribute.Float64("prioq.makespan", st.TotalExecutionTime),
	)
	if rep.RunID != "" {
		span.SetAttributes(attribute.String("prioq.run_id", rep.RunID))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
