// Package allocator 为 idgen 生成器分配生产者 ID。
//
// 生成器只保证"同一生产者 ID 的进程内唯一"，集群内的唯一性依赖每个进程持有不同的生产者 ID。
// 本包提供四种分配方式：
//   - static: 使用配置中的固定值
//   - ip:     使用本机首个非回环 IPv4 地址的最后一段
//   - redis:  Lua 脚本 SET NX PX 抢占，定期续期
//   - etcd:   Lease + Txn CAS 抢占，Lease KeepAlive 续期
//
// 可分配的范围是 [0, 2^ProducerBits-1)，全 1 值保留，永远不会被分配。
//
// 基本用法：
//
//	alloc, _ := allocator.New(&allocator.Config{Driver: "redis"},
//	    allocator.WithRedisConnector(redisConn), allocator.WithLogger(logger))
//	defer alloc.Stop()
//
//	producerID, err := alloc.Allocate(ctx)
//	if err != nil {
//	    return err
//	}
//	go func() {
//	    if err := <-alloc.KeepAlive(ctx); err != nil {
//	        // 租约丢失，必须停止发号
//	    }
//	}()
package allocator

import (
	"context"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/trace"
	"github.com/ceyewan/flake/xerrors"
)

var tracer = trace.Tracer("github.com/ceyewan/flake/allocator")

// ========================================
// Allocator 接口
// ========================================

// Allocator 生产者 ID 分配器
type Allocator interface {
	// Allocate 分配一个生产者 ID
	Allocate(ctx context.Context) (uint8, error)

	// KeepAlive 在后台维持租约，租约丢失时向返回的通道发送一次错误
	//
	// 无租约的分配方式（static、ip）返回的通道永远不会收到值。
	KeepAlive(ctx context.Context) <-chan error

	// Stop 停止保活并释放已分配的 ID，可重复调用
	Stop()
}

// ========================================
// 统一工厂函数
// ========================================

// New 根据 cfg.Driver 创建分配器
func New(cfg *Config, opts ...Option) (Allocator, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidConfig, "config_nil")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Default()
	}
	logger := opt.logger.With(clog.String("component", "allocator"), clog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case DriverStatic:
		return newStaticAllocator(cfg, logger), nil
	case DriverIP:
		return newIPAllocator(cfg, logger), nil
	case DriverRedis:
		if opt.redis == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "redis_connector_required")
		}
		inst, err := newInstruments(opt.meter, cfg.Driver)
		if err != nil {
			return nil, xerrors.Wrap(err, "allocator: create metrics")
		}
		return newRedisAllocator(cfg, opt.redis, logger, inst), nil
	case DriverEtcd:
		if opt.etcd == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "etcd_connector_required")
		}
		inst, err := newInstruments(opt.meter, cfg.Driver)
		if err != nil {
			return nil, xerrors.Wrap(err, "allocator: create metrics")
		}
		return newEtcdAllocator(cfg, opt.etcd, logger, inst), nil
	default:
		return nil, xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "unsupported driver %q", cfg.Driver), "unsupported_driver")
	}
}

// idleKeepAlive 无租约分配方式的保活通道
func idleKeepAlive() <-chan error {
	return make(chan error)
}
