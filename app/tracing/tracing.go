package tracing

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewProvider builds a tracer provider that samples every root span, keeps
// the caller's sampling decision otherwise, and logs each finished span.
func NewProvider(serviceName string, logger logrus.FieldLogger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(sdkresource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithSpanProcessor(NewLogProcessor(logger)),
	)
}

// LogProcessor writes ended spans to a logrus logger. Failed spans are logged
// at warn level, everything else at debug.
type LogProcessor struct {
	logger logrus.FieldLogger
}

func NewLogProcessor(logger logrus.FieldLogger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	fields := logrus.Fields{
		"trace_id": span.SpanContext().TraceID().String(),
		"span_id":  span.SpanContext().SpanID().String(),
		"span":     span.Name(),
		"duration": span.EndTime().Sub(span.StartTime()).String(),
	}
	if parent := span.Parent(); parent.IsValid() {
		fields["parent_span_id"] = parent.SpanID().String()
	}
	for _, kv := range span.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}

	entry := p.logger.WithFields(fields)
	if status := span.Status(); status.Code == codes.Error {
		entry.WithField("error", status.Description).Warn("span_ended")
		return
	}
	entry.Debug("span_ended")
}

func (p *LogProcessor) Shutdown(context.Context) error {
	return nil
}

func (p *LogProcessor) ForceFlush(context.Context) error {
	return nil
}
