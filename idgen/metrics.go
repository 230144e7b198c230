package idgen

import (
	"context"
	"strconv"
	"time"

	"github.com/ceyewan/flake/metrics"
)

// Metrics 指标常量定义
const (
	// MetricGenerated ID 生成总数 (Counter)
	MetricGenerated = "idgen_generated_total"

	// MetricSequenceExhausted 毫秒内序列号耗尽次数 (Counter)
	MetricSequenceExhausted = "idgen_sequence_exhausted_total"

	// MetricClockRegression 检测到时钟回拨次数 (Counter)
	MetricClockRegression = "idgen_clock_regression_total"

	// MetricExhaustionWait 序列号耗尽后等待下一毫秒的耗时 (Histogram)
	MetricExhaustionWait = "idgen_exhaustion_wait_seconds"
)

// instruments 生成器使用的指标，producer_id 标签在创建时绑定
type instruments struct {
	generated  metrics.BoundCounter
	exhausted  metrics.BoundCounter
	regression metrics.BoundCounter
	wait       metrics.BoundHistogram
}

func newInstruments(meter metrics.Meter, producerID uint8) (*instruments, error) {
	if meter == nil {
		meter = metrics.Discard()
	}
	generated, err := meter.Counter(MetricGenerated, "Total number of generated ids")
	if err != nil {
		return nil, err
	}
	exhausted, err := meter.Counter(MetricSequenceExhausted, "Number of times the per-millisecond sequence was exhausted")
	if err != nil {
		return nil, err
	}
	regression, err := meter.Counter(MetricClockRegression, "Number of detected clock regressions")
	if err != nil {
		return nil, err
	}
	wait, err := meter.Histogram(MetricExhaustionWait, "Time spent waiting for the next millisecond", metrics.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	producer := metrics.L("producer_id", strconv.Itoa(int(producerID)))
	return &instruments{
		generated:  generated.With(producer),
		exhausted:  exhausted.With(producer),
		regression: regression.With(producer),
		wait:       wait.With(producer),
	}, nil
}

func (i *instruments) recordGenerated() {
	i.generated.Inc(context.Background())
}

func (i *instruments) recordExhausted(waited time.Duration) {
	ctx := context.Background()
	i.exhausted.Inc(ctx)
	i.wait.Record(ctx, waited.Seconds())
}

func (i *instruments) recordRegression() {
	i.regression.Inc(context.Background())
}
