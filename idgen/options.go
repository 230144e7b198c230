package idgen

import (
	"time"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
)

// DefaultWaitInterval 序列号耗尽时每次休眠的时长
const DefaultWaitInterval = 100 * time.Microsecond

// Option 组件初始化选项函数
type Option func(*Options)

// Options 组件初始化选项配置
type Options struct {
	Logger       clog.Logger
	Meter        metrics.Meter
	Clock        Clock
	Sleeper      Sleeper
	WaitInterval time.Duration
	Epoch        time.Time
}

func defaultOptions() Options {
	return Options{
		Logger:       clog.Default(),
		Meter:        metrics.Discard(),
		Sleeper:      systemSleeper{},
		WaitInterval: DefaultWaitInterval,
		Epoch:        time.UnixMilli(0),
	}
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMeter 设置 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *Options) {
		o.Meter = meter
	}
}

// WithClock 替换时钟，设置后 WithEpoch 不再生效
func WithClock(clock Clock) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// WithSleeper 替换序列号耗尽时的休眠实现
func WithSleeper(sleeper Sleeper) Option {
	return func(o *Options) {
		o.Sleeper = sleeper
	}
}

// WithWaitInterval 设置序列号耗尽时的休眠间隔
func WithWaitInterval(d time.Duration) Option {
	return func(o *Options) {
		o.WaitInterval = d
	}
}

// WithEpoch 设置系统时钟的纪元，默认 Unix 纪元
func WithEpoch(epoch time.Time) Option {
	return func(o *Options) {
		o.Epoch = epoch
	}
}
