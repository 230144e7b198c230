package idgen

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ceyewan/flake/xerrors"
)

// Worker 由单个 goroutine 独占 Generator，通过 channel 为其它 goroutine 发号
//
//	w := idgen.NewWorker(gen)
//	go w.Run(ctx)
//	id, err := w.Next(ctx)
//
// 遇到致命错误（时钟回拨）时 Worker 停止：触发错误的请求收到原始错误，Run 返回该错误，
// 之后的 Next 返回 ErrWorkerStopped。
type Worker struct {
	gen      *Generator
	requests chan chan result
	done     chan struct{}
	running  atomic.Bool
	stopOnce sync.Once
}

type result struct {
	id  uint64
	err error
}

// NewWorker 创建 Worker，调用方此后不应再直接使用 gen
func NewWorker(gen *Generator) *Worker {
	return &Worker{
		gen:      gen,
		requests: make(chan chan result),
		done:     make(chan struct{}),
	}
}

// Run 处理发号请求，直到 ctx 取消或发生致命错误
//
// ctx 取消时返回 nil；致命错误时返回该错误。Run 只能调用一次。
func (w *Worker) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return xerrors.New("idgen: worker already running")
	}
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case reply := <-w.requests:
			id, err := w.gen.Next()
			reply <- result{id: id, err: err}
			if err != nil && xerrors.IsFatal(err) {
				return err
			}
		}
	}
}

// Next 请求一个 ID，Worker 未运行时阻塞直到 ctx 结束
func (w *Worker) Next(ctx context.Context) (uint64, error) {
	reply := make(chan result, 1)
	select {
	case w.requests <- reply:
	case <-w.done:
		return 0, ErrWorkerStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	r := <-reply
	return r.id, r.err
}

// Done 在 Worker 停止后关闭
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) stop() {
	w.stopOnce.Do(func() { close(w.done) })
}
