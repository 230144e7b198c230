// Package metrics 为 flake 组件提供指标收集，基于 OpenTelemetry SDK，经 Prometheus Exporter 暴露。
//
// 每个 Meter 使用独立的 prometheus.Registry，Port > 0 时内置 HTTP 服务，
// 也可以通过 Handler() 挂到调用方自己的服务上。
//
//	meter, err := metrics.New(metrics.NewProdDefaultConfig("flake"))
//	if err != nil {
//	    return err
//	}
//	defer meter.Shutdown(ctx)
//
//	generated, _ := meter.Counter("idgen_generated_total", "Total number of generated ids")
//	generated.Inc(ctx, metrics.L("producer_id", "7"))
//
// 热路径上标签固定时，用 With 预先绑定，记录时不再构造属性：
//
//	bound := generated.With(metrics.L("producer_id", "7"))
//	bound.Inc(ctx)
package metrics

import (
	"context"
	"net/http"
)

// Counter 单调递增计数
type Counter interface {
	Inc(ctx context.Context, labels ...Label)
	// Add 增加 val，负数会被后端忽略
	Add(ctx context.Context, val float64, labels ...Label)
	// With 绑定一组固定标签
	With(labels ...Label) BoundCounter
}

// BoundCounter 已绑定标签的 Counter
type BoundCounter interface {
	Inc(ctx context.Context)
	Add(ctx context.Context, val float64)
}

// Gauge 瞬时值，可增可减
type Gauge interface {
	Set(ctx context.Context, val float64, labels ...Label)
	Inc(ctx context.Context, labels ...Label)
	Dec(ctx context.Context, labels ...Label)
}

// Histogram 值分布，例如等待耗时
type Histogram interface {
	Record(ctx context.Context, val float64, labels ...Label)
	// With 绑定一组固定标签
	With(labels ...Label) BoundHistogram
}

// BoundHistogram 已绑定标签的 Histogram
type BoundHistogram interface {
	Record(ctx context.Context, val float64)
}

// Meter 指标工厂，创建的指标可并发使用
type Meter interface {
	// Counter 创建计数器，name 应符合 Prometheus 命名规范，例如 idgen_generated_total
	Counter(name string, desc string, opts ...MetricOption) (Counter, error)
	Gauge(name string, desc string, opts ...MetricOption) (Gauge, error)
	Histogram(name string, desc string, opts ...MetricOption) (Histogram, error)

	// Handler 返回暴露 Prometheus 格式指标的 Handler，禁用时返回 404
	Handler() http.Handler

	// Shutdown 关闭内置 HTTP 服务并刷新指标，之后的记录被丢弃
	Shutdown(ctx context.Context) error
}

// Label 指标标签，值应为低基数，例如 producer_id、driver
type Label struct {
	Key   string
	Value string
}

// L 构造 Label
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}

// MetricOption 创建指标时的选项
type MetricOption func(*MetricOptions)

// MetricOptions 指标选项
type MetricOptions struct {
	// Unit UCUM 单位，例如 "s"、"By"
	Unit string
}

// WithUnit 设置指标单位
func WithUnit(unit string) MetricOption {
	return func(o *MetricOptions) {
		o.Unit = unit
	}
}
