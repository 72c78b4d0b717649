package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Observability owns the OpenTelemetry meter and tracer providers. A nil
// *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerShutdown func(context.Context) error
	replyCounter   otelmetric.Int64Counter
	replyDuration  otelmetric.Float64Histogram
}

// New registers an OpenTelemetry meter provider exported through the
// Prometheus default registry and, when jaegerEndpoint is set, a tracer
// provider exporting to Jaeger.
func New(serviceName, jaegerEndpoint string, logger *zap.Logger) *Observability {
	o := &Observability{}

	exporter, err := prometheus.New()
	if err != nil {
		logger.Warn("Failed to create Prometheus exporter", zap.Error(err))
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)

		meter := o.meterProvider.Meter(serviceName)
		o.replyCounter, _ = meter.Int64Counter(
			"replies.processed",
			otelmetric.WithDescription("Number of review replies processed"),
		)
		o.replyDuration, _ = meter.Float64Histogram(
			"replies.duration",
			otelmetric.WithDescription("End-to-end reply generation duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	if jaegerEndpoint != "" {
		shutdown, err := initTracing(serviceName, jaegerEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", zap.String("endpoint", jaegerEndpoint), zap.Error(err))
		} else {
			o.tracerShutdown = shutdown
			logger.Info("Tracing enabled", zap.String("endpoint", jaegerEndpoint))
		}
	}

	return o
}

func (o *Observability) RecordReplyProcessed(ctx context.Context, status, sentiment string) {
	if o == nil || o.replyCounter == nil {
		return
	}
	o.replyCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
		attribute.String("sentiment", sentiment),
	))
}

func (o *Observability) RecordReplyDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.replyDuration == nil {
		return
	}
	o.replyDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerShutdown != nil {
		_ = o.tracerShutdown(ctx)
	}
}
