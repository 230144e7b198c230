// Package trace 初始化 OpenTelemetry 链路追踪。
//
// flake 的发号路径是纯内存计算，不产生 Span；分配器与 Redis 连接器等涉及网络 I/O 的
// 组件通过全局 TracerProvider 记录 Span。未调用 Init/Discard 时这些 Span 为空操作。
package trace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/ceyewan/flake/xerrors"
)

// Init 将 Span 经 OTLP gRPC 导出到 cfg.Endpoint，并设置为全局 Provider
//
// 返回的函数在退出时调用，刷新尚未导出的 Span。
func Init(ctx context.Context, cfg *Config) (func(context.Context) error, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(5 * time.Second),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to create otlp exporter")
	}

	var processor sdktrace.TracerProviderOption
	if cfg.Batcher == "simple" {
		processor = sdktrace.WithSyncer(exporter)
	} else {
		processor = sdktrace.WithBatcher(exporter)
	}
	return install(ctx, cfg.ServiceName, cfg.Sampler, processor)
}

// Discard 设置不导出的全局 Provider，Span 仍有合法的 TraceID，可用于日志关联
func Discard(serviceName string) (func(context.Context) error, error) {
	return install(context.Background(), serviceName, 1.0)
}

// install 创建 TracerProvider，设置为全局 Provider 并启用 W3C TraceContext 与 Baggage 传播
func install(ctx context.Context, serviceName string, ratio float64, opts ...sdktrace.TracerProviderOption) (func(context.Context) error, error) {
	var resOpts []resource.Option
	if serviceName != "" {
		resOpts = append(resOpts, resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	}
	res, err := resource.New(ctx, resOpts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to create resource")
	}

	tp := sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	}, opts...)...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
