package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by spans and measurements.
//
//nolint:gochecknoglobals // OpenTelemetry attribute keys must be global for reuse
var (
	AttrMethodKey   = attribute.Key("polyglot_method")
	AttrPackageKey  = attribute.Key("polyglot_package")
	AttrStatusKey   = attribute.Key("polyglot_status")
	AttrErrorKey    = attribute.Key("polyglot_error")
	AttrLanguageKey = attribute.Key("polyglot_language")
)

type contextKey string

func (c contextKey) String() string {
	return "polyglot/telemetry/" + string(c)
}

const (
	ctxKeyStartTime  = contextKey("spanStartTime")
	ctxKeyMethodName = contextKey("methodName")
)

type tracer struct {
	name           string
	tracer         trace.Tracer
	latencyMeasure metric.Float64Histogram
}

// NewTracer creates a tracer for pkg whose spans feed the pkg latency histogram.
func NewTracer(pkg string, options ...trace.TracerOption) Tracer {
	return &tracer{
		name:           pkg,
		tracer:         otel.Tracer(pkg, options...),
		latencyMeasure: LatencyMeasure(pkg),
	}
}

// Start creates and starts a span, ending it is up to the caller.
//
//nolint:spancheck // spans are returned to the caller, End closes them
func (t *tracer) Start(
	ctx context.Context,
	methodName string,
	options ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	options = append(options, trace.WithAttributes(AttrMethodKey.String(methodName)))

	ctx, span := t.tracer.Start(ctx, t.name+"/"+methodName, options...)
	ctx = context.WithValue(ctx, ctxKeyStartTime, time.Now())
	return context.WithValue(ctx, ctxKeyMethodName, methodName), span
}

// End completes span, recording err on it and the elapsed time in the latency histogram.
// ctx must be the context returned by Start.
func (t *tracer) End(ctx context.Context, span trace.Span, err error, options ...trace.SpanEndOption) {
	if err != nil {
		options = append(options, trace.WithStackTrace(true))
		span.SetAttributes(AttrErrorKey.String(err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(options...)

	startTime, ok := ctx.Value(ctxKeyStartTime).(time.Time)
	if !ok {
		util.Log(ctx).WithField("tracer", t.name).Warn("End -- span was not started by this tracer")
		return
	}
	methodName, _ := ctx.Value(ctxKeyMethodName).(string)

	t.latencyMeasure.Record(ctx,
		float64(time.Since(startTime).Milliseconds()),
		metric.WithAttributes(
			AttrStatusKey.String(ErrorCode(err)),
			AttrMethodKey.String(methodName)),
	)
}

// ErrorCode classifies err for the status attribute.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline exceeded"
	default:
		return "err"
	}
}
