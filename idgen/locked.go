package idgen

import "sync"

// Locked 以互斥锁包装 Generator，供多个 goroutine 共享
type Locked struct {
	mu  sync.Mutex
	gen *Generator
}

// NewLocked 包装生成器，调用方此后不应再直接使用 gen
func NewLocked(gen *Generator) *Locked {
	return &Locked{gen: gen}
}

// Next 在锁内调用 Generator.Next
func (l *Locked) Next() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen.Next()
}

// Layout 返回被包装生成器的位布局
func (l *Locked) Layout() Layout { return l.gen.Layout() }
