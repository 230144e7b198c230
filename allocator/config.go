package allocator

import (
	"time"

	"github.com/ceyewan/flake/idgen"
	"github.com/ceyewan/flake/xerrors"
)

// 分配方式
const (
	DriverStatic = "static"
	DriverIP     = "ip"
	DriverRedis  = "redis"
	DriverEtcd   = "etcd"
)

// ========================================
// 配置结构 (Configuration)
// ========================================

// Config 生产者 ID 分配器配置
type Config struct {
	// Driver 分配方式: "static" | "ip" | "redis" | "etcd"，默认 "static"
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`

	// ProducerID Driver="static" 时使用的生产者 ID
	ProducerID uint8 `mapstructure:"producer_id" yaml:"producer_id" json:"producer_id"`

	// ProducerBits 生产者 ID 位宽，须与生成器一致，默认 8
	ProducerBits uint8 `mapstructure:"producer_bits" yaml:"producer_bits" json:"producer_bits"`

	// KeyPrefix Redis/Etcd 键前缀，默认 "flake:producer"
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix" json:"key_prefix"`

	// TTL 租约时长，默认 30s，最小 1s；etcd 租约以秒为单位，须为整秒
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = DriverStatic
	}
	if c.ProducerBits == 0 {
		c.ProducerBits = idgen.DefaultProducerBits
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "flake:producer"
	}
	if c.TTL == 0 {
		c.TTL = 30 * time.Second
	}
}

func (c *Config) validate() error {
	if idgen.ProducerCapacity(c.ProducerBits) == 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "producer bits %d not in [1, 8]", c.ProducerBits), "producer_bits_out_of_range")
	}
	if c.TTL < time.Second {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "ttl %s below 1s", c.TTL), "ttl_too_short")
	}
	if c.Driver == DriverEtcd && c.TTL%time.Second != 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "etcd ttl %s is not a whole number of seconds", c.TTL), "ttl_not_whole_seconds")
	}
	return nil
}

// capacity 可分配的生产者 ID 数量
func (c *Config) capacity() int {
	return idgen.ProducerCapacity(c.ProducerBits)
}
