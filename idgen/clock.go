package idgen

import "time"

// Clock 毫秒时钟，返回相对某个纪元的毫秒数
//
// 生成器只要求同一进程内读数单调不减；出现回退时 Next 返回 ClockRegressionError。
type Clock interface {
	Now() uint64
}

// Sleeper 序列号耗尽时的让出策略
type Sleeper interface {
	Sleep(d time.Duration)
}

// ClockFunc 将函数适配为 Clock
type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 { return f() }

// SleeperFunc 将函数适配为 Sleeper
type SleeperFunc func(d time.Duration)

func (f SleeperFunc) Sleep(d time.Duration) { f(d) }

// systemClock 基于墙上时钟，读数为 epoch 以来的毫秒数
type systemClock struct {
	epochMs int64
}

// NewSystemClock 创建以 epoch 为零点的系统时钟
func NewSystemClock(epoch time.Time) Clock {
	return systemClock{epochMs: epoch.UnixMilli()}
}

func (c systemClock) Now() uint64 {
	ms := time.Now().UnixMilli() - c.epochMs
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

type systemSleeper struct{}

func (systemSleeper) Sleep(d time.Duration) { time.Sleep(d) }
