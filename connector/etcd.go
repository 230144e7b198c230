package connector

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/xerrors"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type etcdConnector struct {
	cfg      *EtcdConfig
	client   *clientv3.Client
	logger   clog.Logger
	attempts metrics.Counter
	healthy  atomic.Bool
	closed   atomic.Bool
}

// NewEtcd 创建 Etcd 连接器
//
// clientv3 在创建时不会阻塞等待连接，可用性在 Connect 中验证。
func NewEtcd(cfg *EtcdConfig, opts ...Option) (EtcdConnector, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrConfig, "etcd_config_nil")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := &options{}
	for _, o := range opts {
		o(opt)
	}
	opt.applyDefaults()

	attempts, err := newAttemptsCounter(opt.meter)
	if err != nil {
		return nil, err
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            cfg.Endpoints,
		Username:             cfg.Username,
		Password:             cfg.Password,
		DialTimeout:          cfg.DialTimeout,
		DialKeepAliveTime:    cfg.KeepAliveTime,
		DialKeepAliveTimeout: cfg.KeepAliveTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd connector[%s]: %w: %w", cfg.Name, ErrConnection, err)
	}

	return &etcdConnector{
		cfg:      cfg,
		client:   client,
		logger:   opt.logger.With(clog.String("connector", "etcd"), clog.String("name", cfg.Name)),
		attempts: attempts,
	}, nil
}

// Connect 通过一次 Status 请求验证连接
func (c *etcdConnector) Connect(ctx context.Context) error {
	c.logger.Info("attempting to connect to etcd", clog.Any("endpoints", c.cfg.Endpoints))

	if err := c.probe(ctx); err != nil {
		c.attempts.Inc(ctx, metrics.L("connector", "etcd"), metrics.L("result", "failure"))
		c.logger.Error("failed to connect to etcd", clog.Error(err))
		return fmt.Errorf("etcd connector[%s]: %w: %w", c.cfg.Name, ErrConnection, err)
	}

	c.attempts.Inc(ctx, metrics.L("connector", "etcd"), metrics.L("result", "success"))
	c.healthy.Store(true)
	c.logger.Info("successfully connected to etcd", clog.Any("endpoints", c.cfg.Endpoints))
	return nil
}

// Close 关闭连接
func (c *etcdConnector) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.healthy.Store(false)
	if err := c.client.Close(); err != nil {
		c.logger.Error("failed to close etcd connection", clog.Error(err))
		return err
	}
	c.logger.Info("etcd connection closed")
	return nil
}

// HealthCheck 检查连接健康状态
func (c *etcdConnector) HealthCheck(ctx context.Context) error {
	if err := c.probe(ctx); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("etcd health check failed", clog.Error(err))
		return fmt.Errorf("etcd connector[%s]: %w: %w", c.cfg.Name, ErrHealthCheck, err)
	}
	c.healthy.Store(true)
	return nil
}

// probe 依次探测端点，任一成功即可
func (c *etcdConnector) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	var errs []error
	for _, ep := range c.cfg.Endpoints {
		if _, err := c.client.Status(ctx, ep); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	return xerrors.Combine(errs...)
}

func (c *etcdConnector) IsHealthy() bool { return c.healthy.Load() }

func (c *etcdConnector) Name() string { return c.cfg.Name }

func (c *etcdConnector) GetClient() *clientv3.Client { return c.client }
