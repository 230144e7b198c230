package allocator

import (
	"context"
	"net"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// ipAllocator 使用本机 IPv4 地址的最后一段作为生产者 ID
//
// 超出可分配范围时直接报错，不做取模，避免两台机器静默地得到同一个 ID。
type ipAllocator struct {
	capacity int
	logger   clog.Logger
	addrs    func() ([]net.Addr, error)
}

func newIPAllocator(cfg *Config, logger clog.Logger) *ipAllocator {
	return &ipAllocator{
		capacity: cfg.capacity(),
		logger:   logger,
		addrs:    net.InterfaceAddrs,
	}
}

func (a *ipAllocator) Allocate(ctx context.Context) (uint8, error) {
	ip, err := a.localIPv4()
	if err != nil {
		return 0, err
	}
	id := int(ip[3])
	if id >= a.capacity {
		return 0, xerrors.WithCode(
			xerrors.Wrapf(ErrOutOfRange, "last octet of %s is %d, must be below %d", ip, id, a.capacity),
			"producer_id_out_of_range")
	}
	a.logger.Info("producer id allocated",
		clog.Int("producer_id", id),
		clog.String("ip", ip.String()))
	return uint8(id), nil
}

func (a *ipAllocator) KeepAlive(ctx context.Context) <-chan error { return idleKeepAlive() }

func (a *ipAllocator) Stop() {}

// localIPv4 返回第一个非回环的 IPv4 地址
func (a *ipAllocator) localIPv4() (net.IP, error) {
	addrs, err := a.addrs()
	if err != nil {
		return nil, xerrors.Wrap(err, "allocator: list interface addresses")
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip := ipnet.IP.To4(); ip != nil {
			return ip, nil
		}
	}
	return nil, xerrors.WithCode(ErrNoIPv4, "no_ipv4_address")
}
