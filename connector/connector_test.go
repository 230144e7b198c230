package connector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// TestRedisConfigValidation 测试 Redis 配置验证
func TestRedisConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *RedisConfig
		wantErr bool
		code    string
	}{
		{"valid config with defaults", &RedisConfig{Addr: "localhost:6379"}, false, ""},
		{"valid config with custom values", &RedisConfig{Name: "custom", Addr: "localhost:6379", DB: 1, PoolSize: 20}, false, ""},
		{"empty address", &RedisConfig{}, true, "redis_addr_empty"},
		{"negative db", &RedisConfig{Addr: "localhost:6379", DB: -1}, true, "redis_db_negative"},
		{"negative min idle", &RedisConfig{Addr: "localhost:6379", MinIdleConns: -1}, true, "redis_min_idle_negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.setDefaults()
			err := tt.cfg.validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrConfig)
			assert.Equal(t, tt.code, xerrors.GetCode(err))
		})
	}
}

// TestRedisConfigDefaults 测试 Redis 默认值
func TestRedisConfigDefaults(t *testing.T) {
	cfg := &RedisConfig{Addr: "localhost:6379"}
	cfg.setDefaults()
	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
}

// TestEtcdConfigValidation 测试 Etcd 配置验证
func TestEtcdConfigValidation(t *testing.T) {
	cfg := &EtcdConfig{}
	cfg.setDefaults()
	err := cfg.validate()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, "etcd_endpoints_empty", xerrors.GetCode(err))

	cfg = &EtcdConfig{Endpoints: []string{"localhost:2379"}}
	cfg.setDefaults()
	require.NoError(t, cfg.validate())
	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.KeepAliveTime)
	assert.Equal(t, 3*time.Second, cfg.KeepAliveTimeout)
}

// TestNilConfig 测试空配置
func TestNilConfig(t *testing.T) {
	_, err := NewRedis(nil)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewEtcd(nil)
	assert.ErrorIs(t, err, ErrConfig)
}

// TestRedisUnreachable 测试连接不可达地址时返回 ErrConnection，且 Close 幂等
func TestRedisUnreachable(t *testing.T) {
	conn, err := NewRedis(&RedisConfig{
		Name:        "unreachable",
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
	}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "unreachable", conn.Name())
	assert.NotNil(t, conn.GetClient())
	assert.False(t, conn.IsHealthy())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = conn.Connect(ctx)
	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, conn.IsHealthy())

	err = conn.HealthCheck(ctx)
	assert.ErrorIs(t, err, ErrHealthCheck)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

// TestEtcdUnreachable 测试 Etcd 不可达时 Connect 失败
func TestEtcdUnreachable(t *testing.T) {
	conn, err := NewEtcd(&EtcdConfig{
		Endpoints:   []string{"127.0.0.1:1"},
		DialTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, conn.IsHealthy())
}
