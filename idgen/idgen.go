// Package idgen 生成 64 位、按时间有序、进程内唯一的整数 ID。
//
// 位布局（从高到低）：
//
//	| producer id | timestamp (毫秒) | sequence |
//
// 默认 8 位生产者、41 位时间戳、15 位序列号。不同生产者 ID 的进程生成的 ID 互不冲突，
// 生产者 ID 的分配由部署方负责，可选地借助 allocator 包。
//
// 基本用法：
//
//	gen, err := idgen.New(3, idgen.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	id, err := gen.Next()
//	if xerrors.IsFatal(err) {
//	    // 时钟回拨，停止发号
//	}
//
// Generator 本身不加锁；多个 goroutine 共享时使用 Locked 或 Worker。
package idgen

import (
	"time"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// ========================================
// 工厂函数 (Factory Functions)
// ========================================

// New 使用默认位宽（8 位生产者、41 位时间戳）创建生成器
func New(producerID uint8, opts ...Option) (*Generator, error) {
	return NewWithLayout(producerID, DefaultProducerBits, DefaultTimestampBits, opts...)
}

// NewWithLayout 使用指定位宽创建生成器
//
// 构造时读取一次时钟作为初始时间戳，序列号从 0 开始。
func NewWithLayout(producerID, producerBits, timestampBits uint8, opts ...Option) (*Generator, error) {
	layout, err := NewLayout(producerID, producerBits, timestampBits)
	if err != nil {
		return nil, err
	}

	opt := defaultOptions()
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}
	if opt.Sleeper == nil {
		opt.Sleeper = systemSleeper{}
	}
	if opt.WaitInterval <= 0 {
		return nil, xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "wait interval %s must be positive", opt.WaitInterval), "wait_interval_not_positive")
	}
	if opt.Clock == nil {
		if opt.Epoch.After(time.Now()) {
			return nil, xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "epoch %s is in the future", opt.Epoch.Format(time.RFC3339)), "epoch_in_future")
		}
		opt.Clock = NewSystemClock(opt.Epoch)
	}

	inst, err := newInstruments(opt.Meter, producerID)
	if err != nil {
		return nil, xerrors.Wrap(err, "idgen: create metrics")
	}

	logger := opt.Logger.With(clog.String("component", "idgen"))
	g := &Generator{
		layout:       layout,
		clock:        opt.Clock,
		sleeper:      opt.Sleeper,
		waitInterval: opt.WaitInterval,
		since:        opt.Clock.Now(),
		logger:       logger,
		inst:         inst,
	}

	logger.Info("id generator created",
		clog.Int("producer_id", int(producerID)),
		clog.String("layout", layout.String()),
		clog.Uint64("max_sequence", layout.maxSequence))
	return g, nil
}

// NewFromConfig 根据配置创建生成器，opts 中的选项优先于配置项
func NewFromConfig(cfg *Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []Option{WithEpoch(cfg.Epoch()), WithWaitInterval(cfg.WaitInterval)}
	return NewWithLayout(cfg.ProducerID, cfg.ProducerBits, cfg.TimestampBits, append(base, opts...)...)
}
