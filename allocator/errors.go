package allocator

import "github.com/ceyewan/flake/xerrors"

var (
	// ErrInvalidConfig 配置非法
	ErrInvalidConfig = xerrors.New("allocator: invalid config")

	// ErrConnectorNil 缺少所需的连接器
	ErrConnectorNil = xerrors.New("allocator: connector is nil")

	// ErrOutOfRange 生产者 ID 超出可分配范围
	ErrOutOfRange = xerrors.New("allocator: producer id out of range")

	// ErrNoIPv4 本机没有可用的非回环 IPv4 地址
	ErrNoIPv4 = xerrors.New("allocator: no non-loopback ipv4 address")

	// ErrExhausted 所有生产者 ID 都已被占用
	ErrExhausted = xerrors.New("allocator: no available producer id")

	// ErrNotAllocated 尚未调用 Allocate
	ErrNotAllocated = xerrors.New("allocator: producer id not allocated")

	// ErrLeaseLost 租约丢失，生产者 ID 可能已被其他进程持有
	ErrLeaseLost = xerrors.New("allocator: lease lost")
)
