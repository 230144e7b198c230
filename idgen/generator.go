package idgen

import (
	"time"

	"github.com/ceyewan/flake/clog"
)

// Generator 时间有序的 64 位 ID 生成器
//
// Generator 不加锁，同一实例只能由一个 goroutine 使用。需要共享时使用 Locked 或 Worker。
type Generator struct {
	layout       Layout
	clock        Clock
	sleeper      Sleeper
	waitInterval time.Duration

	since    uint64 // 最近一次使用的时间戳（毫秒）
	sequence uint64 // since 毫秒内最近一次使用的序列号

	wrapWarned bool
	logger     clog.Logger
	inst       *instruments
}

// Layout 返回生成器的位布局
func (g *Generator) Layout() Layout { return g.layout }

// ProducerID 返回生成器的生产者 ID
func (g *Generator) ProducerID() uint8 { return g.layout.producerID }

// Next 生成下一个 ID
//
// 同一毫秒内序列号递增；序列号耗尽时按 waitInterval 休眠直到时钟前进，然后从 0 开始。
// 时钟读数小于上一次使用的时间戳时返回 *ClockRegressionError，且不修改内部状态。
func (g *Generator) Next() (uint64, error) {
	now := g.clock.Now()
	if now < g.since {
		return 0, g.regression(now)
	}

	var sequence uint64
	if now == g.since {
		sequence = (g.sequence + 1) & g.layout.maxSequence
		if sequence == 0 {
			next, err := g.waitNextMillis()
			if err != nil {
				return 0, err
			}
			now = next
		}
	}

	g.since = now
	g.sequence = sequence
	if now > g.layout.timestampMask && !g.wrapWarned {
		g.wrapWarned = true
		g.logger.Warn("timestamp exceeds field width, high bits are truncated",
			clog.Uint64("timestamp", now),
			clog.Int("timestamp_bits", int(g.layout.timestampBits)))
	}

	g.inst.recordGenerated()
	return g.layout.Compose(now, sequence), nil
}

// waitNextMillis 序列号耗尽后等待时钟离开 since
func (g *Generator) waitNextMillis() (uint64, error) {
	start := time.Now()
	for {
		g.sleeper.Sleep(g.waitInterval)
		now := g.clock.Now()
		if now > g.since {
			waited := time.Since(start)
			g.inst.recordExhausted(waited)
			g.logger.Debug("sequence exhausted, waited for next millisecond",
				clog.Uint64("since", g.since),
				clog.Uint64("now", now),
				clog.Duration("waited", waited))
			return now, nil
		}
		if now < g.since {
			return 0, g.regression(now)
		}
	}
}

func (g *Generator) regression(now uint64) error {
	err := &ClockRegressionError{Since: g.since, Now: now}
	g.inst.recordRegression()
	g.logger.Error("clock moved backwards", clog.Error(err),
		clog.Uint64("since", g.since),
		clog.Uint64("now", now))
	return err
}
