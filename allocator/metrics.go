package allocator

import (
	"context"

	"github.com/ceyewan/flake/metrics"
)

const (
	// MetricLeaseHeld 当前是否持有生产者 ID 租约，1 持有 0 未持有 (Gauge)
	MetricLeaseHeld = "allocator_lease_held"

	// MetricLeaseLost 租约丢失次数 (Counter)
	MetricLeaseLost = "allocator_lease_lost_total"
)

type instruments struct {
	held   metrics.Gauge
	lost   metrics.BoundCounter
	labels []metrics.Label
}

func newInstruments(meter metrics.Meter, driver string) (*instruments, error) {
	if meter == nil {
		meter = metrics.Discard()
	}
	held, err := meter.Gauge(MetricLeaseHeld, "Whether a producer id lease is currently held")
	if err != nil {
		return nil, err
	}
	lost, err := meter.Counter(MetricLeaseLost, "Number of producer id leases lost")
	if err != nil {
		return nil, err
	}
	return &instruments{
		held:   held,
		lost:   lost.With(metrics.L("driver", driver)),
		labels: []metrics.Label{metrics.L("driver", driver)},
	}, nil
}

func (i *instruments) leaseAcquired() { i.held.Set(context.Background(), 1, i.labels...) }

func (i *instruments) leaseReleased() { i.held.Set(context.Background(), 0, i.labels...) }

func (i *instruments) leaseLost() {
	ctx := context.Background()
	i.held.Set(ctx, 0, i.labels...)
	i.lost.Inc(ctx)
}
