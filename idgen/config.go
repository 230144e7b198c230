package idgen

import (
	"time"

	"github.com/ceyewan/flake/xerrors"
)

// ========================================
// 配置结构 (Configuration)
// ========================================

// Config 生成器配置，可由 config.Loader 通过 UnmarshalKey("idgen", &cfg) 加载
//
// 校验是严格的：位宽为 0 视为非法，而不是回落到默认值。需要默认值时从 DefaultConfig 开始。
type Config struct {
	// ProducerID 生产者 ID，须小于 2^ProducerBits - 1
	ProducerID uint8 `mapstructure:"producer_id" yaml:"producer_id" json:"producer_id"`

	// ProducerBits 生产者 ID 位宽 [1, 8]
	ProducerBits uint8 `mapstructure:"producer_bits" yaml:"producer_bits" json:"producer_bits"`

	// TimestampBits 时间戳位宽 [41, 43]
	TimestampBits uint8 `mapstructure:"timestamp_bits" yaml:"timestamp_bits" json:"timestamp_bits"`

	// EpochMs 纪元（Unix 毫秒），默认 0 即 Unix 纪元，不得晚于当前时间
	EpochMs int64 `mapstructure:"epoch_ms" yaml:"epoch_ms" json:"epoch_ms"`

	// WaitInterval 序列号耗尽时的休眠间隔，默认 100µs
	WaitInterval time.Duration `mapstructure:"wait_interval" yaml:"wait_interval" json:"wait_interval"`
}

// DefaultConfig 返回默认配置：8 位生产者、41 位时间戳、Unix 纪元、100µs 休眠
func DefaultConfig() *Config {
	return &Config{
		ProducerBits:  DefaultProducerBits,
		TimestampBits: DefaultTimestampBits,
		WaitInterval:  DefaultWaitInterval,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c == nil {
		return xerrors.WithCode(ErrInvalidConfig, "config_nil")
	}
	if _, err := NewLayout(c.ProducerID, c.ProducerBits, c.TimestampBits); err != nil {
		return xerrors.Mark(err, ErrInvalidConfig)
	}
	if c.EpochMs < 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "epoch_ms %d is negative", c.EpochMs), "epoch_negative")
	}
	if c.EpochMs > time.Now().UnixMilli() {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "epoch_ms %d is in the future", c.EpochMs), "epoch_in_future")
	}
	if c.WaitInterval <= 0 {
		return xerrors.WithCode(xerrors.Wrapf(ErrInvalidConfig, "wait_interval %s must be positive", c.WaitInterval), "wait_interval_not_positive")
	}
	return nil
}

// Epoch 返回纪元时间
func (c *Config) Epoch() time.Time {
	return time.UnixMilli(c.EpochMs)
}
