package obs

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WithTrace stamps log lines with the active trace/span ids so logs and
// traces can be joined in the backend.
func WithTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	if log == nil {
		return nil
	}
	span := trace.SpanContextFromContext(ctx)
	if !span.IsValid() {
		return log
	}
	return log.With(
		zap.Stringer("trace_id", span.TraceID()),
		zap.Stringer("span_id", span.SpanID()),
	)
}
