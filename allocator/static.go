package allocator

import (
	"context"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// staticAllocator 返回配置中的固定生产者 ID
type staticAllocator struct {
	producerID uint8
	capacity   int
	logger     clog.Logger
}

func newStaticAllocator(cfg *Config, logger clog.Logger) *staticAllocator {
	return &staticAllocator{
		producerID: cfg.ProducerID,
		capacity:   cfg.capacity(),
		logger:     logger,
	}
}

func (a *staticAllocator) Allocate(ctx context.Context) (uint8, error) {
	if int(a.producerID) >= a.capacity {
		return 0, xerrors.WithCode(
			xerrors.Wrapf(ErrOutOfRange, "producer id %d must be below %d", a.producerID, a.capacity),
			"producer_id_out_of_range")
	}
	a.logger.Info("producer id allocated", clog.Int("producer_id", int(a.producerID)))
	return a.producerID, nil
}

func (a *staticAllocator) KeepAlive(ctx context.Context) <-chan error { return idleKeepAlive() }

func (a *staticAllocator) Stop() {}
