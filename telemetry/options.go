package telemetry

import (
	"go.opentelemetry.io/otel/propagation"
	sdklogs "go.opentelemetry.io/otel/sdk/log"
	sdkmetrics "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Option func(m *manager)

// WithDisableTracing leaves the global providers untouched.
func WithDisableTracing() Option {
	return func(m *manager) {
		m.disableTracing = true
	}
}

// WithServiceName sets the service name for resource tagging.
func WithServiceName(name string) Option {
	return func(m *manager) {
		m.serviceName = name
	}
}

// WithServiceVersion sets the service version for resource tagging.
func WithServiceVersion(version string) Option {
	return func(m *manager) {
		m.serviceVersion = version
	}
}

// WithServiceEnvironment sets the service environment for resource tagging.
func WithServiceEnvironment(env string) Option {
	return func(m *manager) {
		m.serviceEnvironment = env
	}
}

// WithSamplingRatio samples that share of root traces, 1 by default.
func WithSamplingRatio(ratio float64) Option {
	return func(m *manager) {
		m.samplingRatio = ratio
	}
}

// WithMetricViews adds views to the meter provider, e.g. Views of an instrumented package.
func WithMetricViews(views ...sdkmetrics.View) Option {
	return func(m *manager) {
		m.views = append(m.views, views...)
	}
}

// WithPropagationTextMap specifies the trace baggage carrier to use.
func WithPropagationTextMap(carrier propagation.TextMapPropagator) Option {
	return func(m *manager) {
		m.traceTextMap = carrier
	}
}

// WithTraceExporter specifies the trace exporter to use.
func WithTraceExporter(exporter sdktrace.SpanExporter) Option {
	return func(m *manager) {
		m.traceExporter = exporter
	}
}

// WithTraceSampler specifies the trace sampler to use.
func WithTraceSampler(sampler sdktrace.Sampler) Option {
	return func(m *manager) {
		m.traceSampler = sampler
	}
}

// WithMetricsReader specifies the metrics reader to use.
func WithMetricsReader(reader sdkmetrics.Reader) Option {
	return func(m *manager) {
		m.metricsReader = reader
	}
}

// WithLogsExporter specifies the logs exporter to use.
func WithLogsExporter(exporter sdklogs.Exporter) Option {
	return func(m *manager) {
		m.logsExporter = exporter
	}
}
