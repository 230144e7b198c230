package connector

import (
	"time"

	"github.com/ceyewan/flake/xerrors"
)

// RedisConfig Redis 连接配置，零值字段在 NewRedis 中补默认值
//
//	redis:
//	  addr: "127.0.0.1:6379"
//	  db: 0
//	  enable_tracing: true
type RedisConfig struct {
	Name     string `mapstructure:"name"` // 默认 "default"
	Addr     string `mapstructure:"addr"` // 必填
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`      // 默认 10
	MinIdleConns int           `mapstructure:"min_idle_conns"` // 默认 0
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`   // 默认 5s
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`   // 默认 3s
	WriteTimeout time.Duration `mapstructure:"write_timeout"`  // 默认 3s

	// EnableTracing 为每条命令记录 Span，使用全局 TracerProvider
	EnableTracing bool `mapstructure:"enable_tracing"`
}

func (c *RedisConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

func (c *RedisConfig) validate() error {
	if c.Addr == "" {
		return xerrors.WithCode(xerrors.Wrap(ErrConfig, "redis addr is empty"), "redis_addr_empty")
	}
	if c.DB < 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrConfig, "redis db %d is negative", c.DB), "redis_db_negative")
	}
	if c.MinIdleConns < 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrConfig, "redis min_idle_conns %d is negative", c.MinIdleConns), "redis_min_idle_negative")
	}
	return nil
}

// EtcdConfig Etcd 连接配置
//
//	etcd:
//	  endpoints: ["127.0.0.1:2379"]
//	  dial_timeout: 5s
type EtcdConfig struct {
	Name      string   `mapstructure:"name"`      // 默认 "default"
	Endpoints []string `mapstructure:"endpoints"` // 必填
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`

	DialTimeout      time.Duration `mapstructure:"dial_timeout"`       // 默认 5s
	KeepAliveTime    time.Duration `mapstructure:"keep_alive_time"`    // gRPC 心跳间隔，默认 10s
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout"` // gRPC 心跳超时，默认 3s
}

func (c *EtcdConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.KeepAliveTime == 0 {
		c.KeepAliveTime = 10 * time.Second
	}
	if c.KeepAliveTimeout == 0 {
		c.KeepAliveTimeout = 3 * time.Second
	}
}

func (c *EtcdConfig) validate() error {
	if len(c.Endpoints) == 0 {
		return xerrors.WithCode(xerrors.Wrap(ErrConfig, "etcd endpoints are empty"), "etcd_endpoints_empty")
	}
	return nil
}
