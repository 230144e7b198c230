package allocator_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/flake/allocator"
	"github.com/ceyewan/flake/idgen"
	"github.com/ceyewan/flake/testkit"
)

// allocateAll 并发创建 n 个分配器并分配，返回分配器与得到的 ID
func allocateAll(t *testing.T, n int, cfg func() *allocator.Config, opt allocator.Option) ([]allocator.Allocator, []uint8, []error) {
	t.Helper()
	allocs := make([]allocator.Allocator, n)
	ids := make([]uint8, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		a, err := allocator.New(cfg(), opt)
		require.NoError(t, err)
		allocs[i] = a
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = a.Allocate(context.Background())
		}()
	}
	wg.Wait()
	t.Cleanup(func() {
		for _, a := range allocs {
			a.Stop()
		}
	})
	return allocs, ids, errs
}

func TestRedisAllocatorIntegration(t *testing.T) {
	conn := testkit.NewRedisContainerConnector(t)
	client := conn.GetClient()
	ctx := context.Background()

	t.Run("exhausts the producer space without duplicates", func(t *testing.T) {
		prefix := "flake:test:" + testkit.NewID()
		cfg := func() *allocator.Config {
			return &allocator.Config{Driver: allocator.DriverRedis, ProducerBits: 3, KeyPrefix: prefix, TTL: 5 * time.Second}
		}

		// 3 位时可分配 7 个 ID，第 8 个必须失败
		_, ids, errs := allocateAll(t, 8, cfg, allocator.WithRedisConnector(conn))

		seen := map[uint8]bool{}
		failures := 0
		for i, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, allocator.ErrExhausted)
				failures++
				continue
			}
			assert.Less(t, int(ids[i]), idgen.ProducerCapacity(3))
			assert.False(t, seen[ids[i]], "duplicate producer id %d", ids[i])
			seen[ids[i]] = true
		}
		assert.Equal(t, 1, failures)
		assert.Len(t, seen, 7)
	})

	t.Run("stop releases the key", func(t *testing.T) {
		prefix := "flake:test:" + testkit.NewID()
		a, err := allocator.New(&allocator.Config{Driver: allocator.DriverRedis, KeyPrefix: prefix, TTL: 5 * time.Second},
			allocator.WithRedisConnector(conn), allocator.WithLogger(testkit.NewLogger()))
		require.NoError(t, err)

		id, err := a.Allocate(ctx)
		require.NoError(t, err)
		key := fmt.Sprintf("%s:%d", prefix, id)
		assert.Equal(t, int64(1), client.Exists(ctx, key).Val())

		a.Stop()
		assert.Equal(t, int64(0), client.Exists(ctx, key).Val())
	})

	t.Run("keep alive renews and reports a stolen key", func(t *testing.T) {
		prefix := "flake:test:" + testkit.NewID()
		a, err := allocator.New(&allocator.Config{Driver: allocator.DriverRedis, KeyPrefix: prefix, TTL: 3 * time.Second},
			allocator.WithRedisConnector(conn))
		require.NoError(t, err)
		defer a.Stop()

		id, err := a.Allocate(ctx)
		require.NoError(t, err)
		key := fmt.Sprintf("%s:%d", prefix, id)

		kaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		errCh := a.KeepAlive(kaCtx)

		// 超过一个 TTL 后键仍然存在
		time.Sleep(4 * time.Second)
		assert.Equal(t, int64(1), client.Exists(ctx, key).Val())

		require.NoError(t, client.Set(ctx, key, "someone-else", 0).Err())
		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, allocator.ErrLeaseLost)
		case <-kaCtx.Done():
			t.Fatal("keep alive did not report the lost key")
		}
	})
}

func TestEtcdAllocatorIntegration(t *testing.T) {
	conn := testkit.NewEtcdContainerConnector(t)
	client := conn.GetClient()
	ctx := context.Background()

	t.Run("exhausts the producer space without duplicates", func(t *testing.T) {
		prefix := "flake/test/" + testkit.NewID()
		cfg := func() *allocator.Config {
			return &allocator.Config{Driver: allocator.DriverEtcd, ProducerBits: 2, KeyPrefix: prefix, TTL: 5 * time.Second}
		}

		_, ids, errs := allocateAll(t, 4, cfg, allocator.WithEtcdConnector(conn))

		seen := map[uint8]bool{}
		failures := 0
		for i, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, allocator.ErrExhausted)
				failures++
				continue
			}
			assert.Less(t, int(ids[i]), 3)
			assert.False(t, seen[ids[i]], "duplicate producer id %d", ids[i])
			seen[ids[i]] = true
		}
		assert.Equal(t, 1, failures)
		assert.Len(t, seen, 3)
	})

	t.Run("stop revokes the lease", func(t *testing.T) {
		prefix := "flake/test/" + testkit.NewID()
		a, err := allocator.New(&allocator.Config{Driver: allocator.DriverEtcd, KeyPrefix: prefix, TTL: 5 * time.Second},
			allocator.WithEtcdConnector(conn), allocator.WithLogger(testkit.NewLogger()))
		require.NoError(t, err)

		id, err := a.Allocate(ctx)
		require.NoError(t, err)
		key := fmt.Sprintf("%s:%d", prefix, id)

		resp, err := client.Get(ctx, key)
		require.NoError(t, err)
		require.Len(t, resp.Kvs, 1)

		a.Stop()
		resp, err = client.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, resp.Kvs)
	})

	t.Run("keep alive reports a revoked lease", func(t *testing.T) {
		prefix := "flake/test/" + testkit.NewID()
		a, err := allocator.New(&allocator.Config{Driver: allocator.DriverEtcd, KeyPrefix: prefix, TTL: 2 * time.Second},
			allocator.WithEtcdConnector(conn))
		require.NoError(t, err)
		defer a.Stop()

		id, err := a.Allocate(ctx)
		require.NoError(t, err)
		key := fmt.Sprintf("%s:%d", prefix, id)

		kaCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		errCh := a.KeepAlive(kaCtx)

		time.Sleep(3 * time.Second)
		resp, err := client.Get(ctx, key)
		require.NoError(t, err)
		require.Len(t, resp.Kvs, 1)

		_, err = client.Revoke(ctx, clientv3.LeaseID(resp.Kvs[0].Lease))
		require.NoError(t, err)

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, allocator.ErrLeaseLost)
		case <-kaCtx.Done():
			t.Fatal("keep alive did not report the revoked lease")
		}
	})
}
