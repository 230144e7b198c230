package testkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	assert.Equal(t, uint64(100), c.Now())

	c.Advance(5)
	assert.Equal(t, uint64(105), c.Now())

	c.Set(90)
	assert.Equal(t, uint64(90), c.Now())

	// 未注册回调时每次 Sleep 推进 1 毫秒
	c.Sleep(time.Microsecond)
	assert.Equal(t, uint64(91), c.Now())

	var calls []int
	c.OnSleep(func(c *ManualClock, n int) {
		calls = append(calls, n)
		c.Set(500)
	})
	c.Sleep(time.Microsecond)
	assert.Equal(t, []int{2}, calls)
	assert.Equal(t, uint64(500), c.Now())
	assert.Equal(t, 2, c.Sleeps())
	assert.Equal(t, 2*time.Microsecond, c.Slept())
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}
