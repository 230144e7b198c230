package allocator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/connector"
	"github.com/ceyewan/flake/trace"
	"github.com/ceyewan/flake/xerrors"
)

// ========================================
// Etcd 实现
// ========================================

// etcdAllocator 基于 Etcd Lease 的生产者 ID 分配器
type etcdAllocator struct {
	etcd   connector.EtcdConnector
	cfg    *Config
	logger clog.Logger
	inst   *instruments
	owner  string

	mu         sync.Mutex
	leaseID    clientv3.LeaseID
	producerID uint8
	key        string
	stopCh     chan struct{}
	stopOnce   sync.Once
}

func newEtcdAllocator(cfg *Config, conn connector.EtcdConnector, logger clog.Logger, inst *instruments) *etcdAllocator {
	return &etcdAllocator{
		etcd:   conn,
		cfg:    cfg,
		logger: logger,
		inst:   inst,
		owner:  ownerToken(),
		stopCh: make(chan struct{}),
	}
}

// Allocate 创建 Lease 后从随机起点遍历，以 ModRevision == 0 为条件抢占键
func (a *etcdAllocator) Allocate(ctx context.Context) (producerID uint8, err error) {
	ctx, span := tracer.Start(ctx, "allocator.etcd.allocate",
		oteltrace.WithAttributes(attribute.String("flake.key_prefix", a.cfg.KeyPrefix)))
	defer func() {
		trace.RecordError(span, err)
		span.SetAttributes(attribute.Int("flake.producer_id", int(producerID)))
		span.End()
	}()

	client := a.etcd.GetClient()

	lease, err := client.Grant(ctx, int64(a.cfg.TTL/time.Second))
	if err != nil {
		a.logger.ErrorContext(ctx, "etcd grant lease failed", clog.Error(err))
		return 0, xerrors.Wrap(err, "allocator: etcd grant")
	}

	capacity := a.cfg.capacity()
	offset := rand.IntN(capacity)
	for i := 0; i < capacity; i++ {
		id := (offset + i) % capacity
		key := fmt.Sprintf("%s:%d", a.cfg.KeyPrefix, id)

		resp, err := client.Txn(ctx).
			If(clientv3.Compare(clientv3.ModRevision(key), "=", 0)).
			Then(clientv3.OpPut(key, a.owner, clientv3.WithLease(lease.ID))).
			Commit()
		if err != nil {
			a.revoke(lease.ID)
			a.logger.ErrorContext(ctx, "etcd txn failed", clog.Error(err), clog.String("key", key))
			return 0, xerrors.Wrap(err, "allocator: etcd txn")
		}
		if !resp.Succeeded {
			continue
		}

		a.mu.Lock()
		a.leaseID = lease.ID
		a.producerID = uint8(id)
		a.key = key
		a.mu.Unlock()

		a.inst.leaseAcquired()
		a.logger.InfoContext(ctx, "producer id allocated",
			clog.Int("producer_id", id),
			clog.String("key", key),
			clog.Int64("lease_id", int64(lease.ID)))
		return uint8(id), nil
	}

	a.revoke(lease.ID)
	return 0, xerrors.WithCode(ErrExhausted, "no_available_producer_id")
}

// KeepAlive 维持 Lease，Lease 过期或保活通道关闭时报告 ErrLeaseLost
func (a *etcdAllocator) KeepAlive(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	a.mu.Lock()
	leaseID := a.leaseID
	a.mu.Unlock()
	if leaseID == 0 {
		errCh <- ErrNotAllocated
		return errCh
	}

	go func() {
		kaCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		kaCh, err := a.etcd.GetClient().KeepAlive(kaCtx, leaseID)
		if err != nil {
			a.inst.leaseLost()
			a.logger.Error("etcd keep alive failed", clog.Error(err), clog.Int64("lease_id", int64(leaseID)))
			errCh <- xerrors.Mark(err, ErrLeaseLost)
			return
		}

		for {
			select {
			case <-a.stopCh:
				return
			case <-kaCtx.Done():
				return
			case ka, ok := <-kaCh:
				if ok && ka != nil {
					continue
				}
				if kaCtx.Err() != nil {
					return
				}
				a.inst.leaseLost()
				a.logger.Error("lease expired", clog.Int64("lease_id", int64(leaseID)))
				errCh <- xerrors.WithCode(ErrLeaseLost, "lease_expired")
				return
			}
		}
	}()

	return errCh
}

// Stop 停止保活并撤销 Lease，关联的键随之删除
func (a *etcdAllocator) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)

		a.mu.Lock()
		leaseID, id, key := a.leaseID, a.producerID, a.key
		a.mu.Unlock()
		if leaseID == 0 {
			return
		}

		a.revoke(leaseID)
		a.inst.leaseReleased()
		a.logger.Info("producer id released",
			clog.Int("producer_id", int(id)),
			clog.String("key", key),
			clog.Int64("lease_id", int64(leaseID)))
	})
}

func (a *etcdAllocator) revoke(leaseID clientv3.LeaseID) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := a.etcd.GetClient().Revoke(ctx, leaseID); err != nil {
		a.logger.Warn("etcd revoke lease failed", clog.Error(err), clog.Int64("lease_id", int64(leaseID)))
	}
}
