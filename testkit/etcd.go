package testkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	tcetcd "github.com/testcontainers/testcontainers-go/modules/etcd"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/flake/connector"
)

// NewEtcdContainerConfig 使用 testcontainers 创建 Etcd 容器并返回配置
// 生命周期由 t.Cleanup 管理；-short 模式下跳过
func NewEtcdContainerConfig(t *testing.T) *connector.EtcdConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping etcd container in short mode")
	}
	ctx := context.Background()

	container, err := tcetcd.Run(ctx, "quay.io/coreos/etcd:v3.5.9")
	require.NoError(t, err, "failed to start Etcd container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "2379")
	require.NoError(t, err)

	return &connector.EtcdConfig{
		Name:      "testcontainer-etcd",
		Endpoints: []string{fmt.Sprintf("%s:%s", host, mappedPort.Port())},
	}
}

// NewEtcdContainerConnector 获取已连接的 Etcd 连接器（基于 testcontainers）
func NewEtcdContainerConnector(t *testing.T) connector.EtcdConnector {
	t.Helper()
	cfg := NewEtcdContainerConfig(t)
	conn, err := connector.NewEtcd(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create etcd connector")
	require.NoError(t, conn.Connect(context.Background()), "failed to connect to etcd")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// NewEtcdContainerClient 获取原生 Etcd 客户端（基于 testcontainers）
func NewEtcdContainerClient(t *testing.T) *clientv3.Client {
	return NewEtcdContainerConnector(t).GetClient()
}
