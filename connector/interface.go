// Package connector 管理 flake 分布式部署所需的外部连接（Redis、Etcd）。
//
// 生产者 ID 分配器（allocator 包）通过连接器借用底层客户端，连接器本身不感知 ID 语义。
//
// 基本使用：
//
//	conn, err := connector.NewRedis(&connector.RedisConfig{Addr: "127.0.0.1:6379"},
//		connector.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
//	client := conn.GetClient()
//
// 资源所有权：Connector 拥有底层连接的生命周期；allocator 仅借用，不调用 Close()。
// 应用层按 LIFO 顺序释放：先停止分配器，再关闭连接器。
package connector

import (
	"context"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// =============================================================================
// 基础接口
// =============================================================================

// Connector 定义所有连接器的通用行为，方法均为并发安全。
type Connector interface {
	// Connect 建立连接并验证可用性，可重复调用。
	Connect(ctx context.Context) error

	// Close 关闭连接并释放资源，可重复调用。
	Close() error

	// HealthCheck 发送探测请求并刷新健康状态缓存。
	HealthCheck(ctx context.Context) error

	// IsHealthy 返回最近一次探测的结果，不阻塞。
	IsHealthy() bool

	// Name 返回连接实例名称，用于日志与指标。
	Name() string
}

// TypedConnector 提供类型安全的客户端访问。
type TypedConnector[T any] interface {
	Connector

	// GetClient 返回底层客户端，Close() 之后不应再使用。
	GetClient() T
}

// =============================================================================
// 具体连接器接口
// =============================================================================

// RedisConnector Redis 连接器接口
type RedisConnector interface {
	TypedConnector[*redis.Client]
}

// EtcdConnector Etcd 连接器接口
type EtcdConnector interface {
	TypedConnector[*clientv3.Client]
}
