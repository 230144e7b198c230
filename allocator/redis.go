package allocator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/connector"
	"github.com/ceyewan/flake/trace"
	"github.com/ceyewan/flake/xerrors"
)

// ========================================
// Redis 实现
// ========================================

// acquireScript 从 offset 开始环形遍历，SET NX PX 抢占第一个空闲 ID
var acquireScript = redis.NewScript(`
local prefix = KEYS[1]
local value = ARGV[1]
local ttl = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local offset = tonumber(ARGV[4])

for i = 0, capacity - 1 do
	local id = (offset + i) % capacity
	if redis.call("SET", prefix .. ":" .. id, value, "NX", "PX", ttl) then
		return id
	end
end
return -1
`)

// renewScript 仅当键仍归本实例所有时续期
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// releaseScript 仅当键仍归本实例所有时删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisAllocator 基于 Redis 键的生产者 ID 分配器
type redisAllocator struct {
	redis  connector.RedisConnector
	cfg    *Config
	logger clog.Logger
	inst   *instruments
	owner  string // 键的值，标识持有者

	mu         sync.Mutex
	producerID uint8
	key        string
	stopCh     chan struct{}
	stopOnce   sync.Once
}

func newRedisAllocator(cfg *Config, conn connector.RedisConnector, logger clog.Logger, inst *instruments) *redisAllocator {
	return &redisAllocator{
		redis:  conn,
		cfg:    cfg,
		logger: logger,
		inst:   inst,
		owner:  ownerToken(),
		stopCh: make(chan struct{}),
	}
}

// Allocate 使用随机起点分散并发抢占
func (a *redisAllocator) Allocate(ctx context.Context) (id uint8, err error) {
	ctx, span := tracer.Start(ctx, "allocator.redis.allocate",
		oteltrace.WithAttributes(attribute.String("flake.key_prefix", a.cfg.KeyPrefix)))
	defer func() {
		trace.RecordError(span, err)
		span.SetAttributes(attribute.Int("flake.producer_id", int(id)))
		span.End()
	}()

	capacity := a.cfg.capacity()
	offset := rand.IntN(capacity)

	result, err := acquireScript.Run(ctx, a.redis.GetClient(),
		[]string{a.cfg.KeyPrefix},
		a.owner, a.cfg.TTL.Milliseconds(), capacity, offset).Int64()
	if err != nil {
		a.logger.ErrorContext(ctx, "redis acquire script failed", clog.Error(err), clog.String("key_prefix", a.cfg.KeyPrefix))
		return 0, xerrors.Wrap(err, "allocator: redis acquire")
	}
	if result < 0 {
		return 0, xerrors.WithCode(ErrExhausted, "no_available_producer_id")
	}

	a.mu.Lock()
	a.producerID = uint8(result)
	a.key = fmt.Sprintf("%s:%d", a.cfg.KeyPrefix, result)
	a.mu.Unlock()

	a.inst.leaseAcquired()
	a.logger.InfoContext(ctx, "producer id allocated",
		clog.Int64("producer_id", result),
		clog.String("key", a.key),
		clog.Duration("ttl", a.cfg.TTL))
	return uint8(result), nil
}

// KeepAlive 每 TTL/3 续期一次，续期失败或键已易主时报告错误
func (a *redisAllocator) KeepAlive(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	a.mu.Lock()
	key := a.key
	a.mu.Unlock()
	if key == "" {
		errCh <- ErrNotAllocated
		return errCh
	}

	go func() {
		ticker := time.NewTicker(a.cfg.TTL / 3)
		defer ticker.Stop()
		client := a.redis.GetClient()

		for {
			select {
			case <-a.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				renewed, err := renewScript.Run(ctx, client, []string{key}, a.owner, a.cfg.TTL.Milliseconds()).Int64()
				if err == nil && renewed == 1 {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				if err == nil {
					err = xerrors.WithCode(ErrLeaseLost, "lease_lost")
				} else {
					err = xerrors.Mark(err, ErrLeaseLost)
				}
				a.inst.leaseLost()
				a.logger.Error("keep alive failed", clog.Error(err), clog.String("key", key))
				errCh <- err
				return
			}
		}
	}()

	return errCh
}

// Stop 停止保活并删除仍归本实例所有的键
func (a *redisAllocator) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)

		a.mu.Lock()
		key, id := a.key, a.producerID
		a.mu.Unlock()
		if key == "" {
			return
		}
		a.inst.leaseReleased()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, a.redis.GetClient(), []string{key}, a.owner).Err(); err != nil {
			a.logger.Warn("release producer id failed", clog.Error(err), clog.String("key", key))
			return
		}
		a.logger.Info("producer id released", clog.Int("producer_id", int(id)), clog.String("key", key))
	})
}

// ownerToken 生成持有者标识：主机名 + 随机 UUID
func ownerToken() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + ":" + uuid.NewString()
}
