package trace

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Tracer 从全局 TracerProvider 获取 Tracer
func Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// RecordError 记录错误并将 Span 状态置为 Error，err 为 nil 时不做任何事
func RecordError(span oteltrace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
