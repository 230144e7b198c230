package idgen

import (
	"fmt"

	"github.com/ceyewan/flake/xerrors"
)

// ========================================
// 位布局 (Bit Layout)
// ========================================

const (
	// DefaultProducerBits 默认生产者 ID 位宽
	DefaultProducerBits uint8 = 8
	// DefaultTimestampBits 默认时间戳位宽（约 69 年）
	DefaultTimestampBits uint8 = 41

	minProducerBits  uint8 = 1
	maxProducerBits  uint8 = 8
	minTimestampBits uint8 = 41
	maxTimestampBits uint8 = 43
)

// Layout 64 位 ID 的位布局，构造后不可变
//
//	| producer (高位) | timestamp | sequence (低位) |
//
// producer 占最高 producerBits 位，timestamp 紧随其后，剩余低位为毫秒内序列号。
type Layout struct {
	producerID     uint8
	producerBits   uint8
	timestampBits  uint8
	producerMask   uint64 // 已移位到最终位置的生产者 ID
	timestampMask  uint64 // 时间戳低位掩码
	timestampShift uint8
	maxSequence    uint64 // 序列号上限（含），同时用作回绕掩码
}

// NewLayout 校验并推导位布局
//
// 约束：
//   - 0 < producerBits <= 8
//   - 41 <= timestampBits <= 43
//   - producerID < 2^producerBits - 1（全 1 值保留不可用）
//
// 任何违反约束的输入都返回包装了 ErrInvalidLayout 的错误，不做截断或默认。
func NewLayout(producerID, producerBits, timestampBits uint8) (Layout, error) {
	if producerBits < minProducerBits || producerBits > maxProducerBits {
		return Layout{}, xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidLayout, "producer bits %d not in [%d, %d]", producerBits, minProducerBits, maxProducerBits),
			"producer_bits_out_of_range")
	}
	if timestampBits < minTimestampBits || timestampBits > maxTimestampBits {
		return Layout{}, xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidLayout, "timestamp bits %d not in [%d, %d]", timestampBits, minTimestampBits, maxTimestampBits),
			"timestamp_bits_out_of_range")
	}
	if int(producerID) >= ProducerCapacity(producerBits) {
		return Layout{}, xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidLayout, "producer id %d must be below %d", producerID, ProducerCapacity(producerBits)),
			"producer_id_out_of_range")
	}

	sequenceBits := 64 - timestampBits - producerBits
	return Layout{
		producerID:     producerID,
		producerBits:   producerBits,
		timestampBits:  timestampBits,
		producerMask:   uint64(producerID) << (64 - producerBits),
		timestampMask:  (uint64(1) << timestampBits) - 1,
		timestampShift: sequenceBits,
		maxSequence:    (uint64(1) << sequenceBits) - 1,
	}, nil
}

// ProducerCapacity 返回给定位宽下可用的生产者 ID 数量，即 [0, 2^bits-1)
//
// 位宽不在 [1, 8] 时返回 0。
func ProducerCapacity(producerBits uint8) int {
	if producerBits < minProducerBits || producerBits > maxProducerBits {
		return 0
	}
	return (1 << producerBits) - 1
}

func (l Layout) ProducerID() uint8 { return l.producerID }
func (l Layout) ProducerBits() uint8 { return l.producerBits }
func (l Layout) TimestampBits() uint8 { return l.timestampBits }
func (l Layout) SequenceBits() uint8 { return l.timestampShift }
func (l Layout) TimestampShift() uint8 { return l.timestampShift }
func (l Layout) ProducerMask() uint64 { return l.producerMask }
func (l Layout) TimestampMask() uint64 { return l.timestampMask }
func (l Layout) MaxSequence() uint64 { return l.maxSequence }

// Compose 按布局拼装 ID
func (l Layout) Compose(timestamp, sequence uint64) uint64 {
	return ((timestamp & l.timestampMask) << l.timestampShift) | l.producerMask | sequence
}

// Parts ID 的三个组成部分
type Parts struct {
	Timestamp  uint64 // 相对纪元的毫秒数（已按 timestampMask 截取）
	ProducerID uint8
	Sequence   uint64
}

// Decompose 按布局拆解 ID
func (l Layout) Decompose(id uint64) Parts {
	return Parts{
		Timestamp:  (id >> l.timestampShift) & l.timestampMask,
		ProducerID: uint8(id >> (64 - l.producerBits)),
		Sequence:   id & l.maxSequence,
	}
}

// String 便于日志输出，例如 "8/41/15"
func (l Layout) String() string {
	return fmt.Sprintf("%d/%d/%d", l.producerBits, l.timestampBits, l.timestampShift)
}
