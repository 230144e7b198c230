package testkit

import (
	"sync"
	"time"
)

// ManualClock 可手动推进的毫秒时钟，同时实现 idgen.Clock 与 idgen.Sleeper
//
// 每次 Sleep 都会计数并调用 OnSleep 注册的回调，测试可以在回调中推进或回拨时钟：
//
//	clock := testkit.NewManualClock(1000)
//	clock.OnSleep(func(c *testkit.ManualClock, n int) {
//	    if n == 3 {
//	        c.Advance(1)
//	    }
//	})
type ManualClock struct {
	mu      sync.Mutex
	now     uint64
	sleeps  int
	slept   time.Duration
	onSleep func(c *ManualClock, n int)
}

// NewManualClock 创建起始读数为 start 的时钟
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

// Now 返回当前读数
func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set 设置读数，允许回拨
func (c *ManualClock) Set(ms uint64) {
	c.mu.Lock()
	c.now = ms
	c.mu.Unlock()
}

// Advance 向前推进 ms 毫秒
func (c *ManualClock) Advance(ms uint64) {
	c.mu.Lock()
	c.now += ms
	c.mu.Unlock()
}

// OnSleep 注册 Sleep 回调，n 为累计 Sleep 次数（从 1 开始）
func (c *ManualClock) OnSleep(fn func(c *ManualClock, n int)) {
	c.mu.Lock()
	c.onSleep = fn
	c.mu.Unlock()
}

// Sleep 不真正休眠，只记录并触发回调；未注册回调时推进 1 毫秒
func (c *ManualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps++
	c.slept += d
	n, fn := c.sleeps, c.onSleep
	c.mu.Unlock()

	if fn == nil {
		c.Advance(1)
		return
	}
	fn(c, n)
}

// Sleeps 返回累计 Sleep 次数
func (c *ManualClock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sleeps
}

// Slept 返回累计请求的休眠时长
func (c *ManualClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}
