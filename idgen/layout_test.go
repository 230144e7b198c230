package idgen

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/flake/xerrors"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name          string
		producerID    uint8
		producerBits  uint8
		timestampBits uint8
		sequenceBits  uint8
		producerMask  uint64
	}{
		{"defaults", 0, 8, 41, 15, 0},
		{"producer 3", 3, 8, 41, 15, uint64(3) << 56},
		{"widest timestamp", 0, 8, 43, 13, 0},
		{"single producer bit", 0, 1, 41, 22, 0},
		{"largest usable id", 254, 8, 42, 14, uint64(254) << 56},
		{"four producer bits", 14, 4, 41, 19, uint64(14) << 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.producerID, tt.producerBits, tt.timestampBits)
			require.NoError(t, err)

			assert.Equal(t, tt.producerID, l.ProducerID())
			assert.Equal(t, tt.producerBits, l.ProducerBits())
			assert.Equal(t, tt.timestampBits, l.TimestampBits())
			assert.Equal(t, tt.sequenceBits, l.SequenceBits())
			assert.Equal(t, tt.sequenceBits, l.TimestampShift())
			assert.Equal(t, (uint64(1)<<tt.timestampBits)-1, l.TimestampMask())
			assert.Equal(t, tt.producerMask, l.ProducerMask())
			assert.Equal(t, (uint64(1)<<tt.sequenceBits)-1, l.MaxSequence())
			assert.Equal(t, uint8(64), l.ProducerBits()+l.TimestampBits()+l.SequenceBits())
		})
	}
}

func TestNewLayoutRejects(t *testing.T) {
	tests := []struct {
		name          string
		producerID    uint8
		producerBits  uint8
		timestampBits uint8
		code          string
	}{
		{"zero producer bits", 0, 0, 41, "producer_bits_out_of_range"},
		{"nine producer bits", 0, 9, 41, "producer_bits_out_of_range"},
		{"timestamp 40", 0, 8, 40, "timestamp_bits_out_of_range"},
		{"timestamp 44", 0, 8, 44, "timestamp_bits_out_of_range"},
		{"all-ones producer id", 255, 8, 41, "producer_id_out_of_range"},
		{"all-ones with one bit", 1, 1, 41, "producer_id_out_of_range"},
		{"above capacity", 16, 4, 41, "producer_id_out_of_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.producerID, tt.producerBits, tt.timestampBits)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLayout)
			assert.Equal(t, tt.code, xerrors.GetCode(err))
		})
	}
}

func TestProducerCapacity(t *testing.T) {
	assert.Equal(t, 0, ProducerCapacity(0))
	assert.Equal(t, 1, ProducerCapacity(1))
	assert.Equal(t, 15, ProducerCapacity(4))
	assert.Equal(t, 255, ProducerCapacity(8))
	assert.Equal(t, 0, ProducerCapacity(9))
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for pb := uint8(1); pb <= 8; pb++ {
		for tb := uint8(41); tb <= 43; tb++ {
			producer := uint8(r.IntN(ProducerCapacity(pb)))
			l, err := NewLayout(producer, pb, tb)
			require.NoError(t, err)

			for range 100 {
				ts := r.Uint64() & l.TimestampMask()
				seq := r.Uint64() & l.MaxSequence()
				id := l.Compose(ts, seq)

				parts := l.Decompose(id)
				require.Equal(t, ts, parts.Timestamp, "layout %s", l)
				require.Equal(t, producer, parts.ProducerID, "layout %s", l)
				require.Equal(t, seq, parts.Sequence, "layout %s", l)
			}
		}
	}
}

func TestComposeTruncatesTimestamp(t *testing.T) {
	l, err := NewLayout(2, 8, 41)
	require.NoError(t, err)

	id := l.Compose(l.TimestampMask()+6, 9)
	parts := l.Decompose(id)
	assert.Equal(t, uint64(5), parts.Timestamp)
	assert.Equal(t, uint8(2), parts.ProducerID)
	assert.Equal(t, uint64(9), parts.Sequence)
}

func TestLayoutString(t *testing.T) {
	l, err := NewLayout(0, 8, 41)
	require.NoError(t, err)
	assert.Equal(t, "8/41/15", l.String())
}
