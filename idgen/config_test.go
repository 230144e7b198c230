package idgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/config"
	"github.com/ceyewan/flake/xerrors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultProducerBits, cfg.ProducerBits)
	assert.Equal(t, DefaultTimestampBits, cfg.TimestampBits)
	assert.Equal(t, DefaultWaitInterval, cfg.WaitInterval)
	assert.Equal(t, time.UnixMilli(0), cfg.Epoch())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		layout bool
		code   string
	}{
		{"zero producer bits", func(c *Config) { c.ProducerBits = 0 }, true, "producer_bits_out_of_range"},
		{"nine producer bits", func(c *Config) { c.ProducerBits = 9 }, true, "producer_bits_out_of_range"},
		{"zero timestamp bits", func(c *Config) { c.TimestampBits = 0 }, true, "timestamp_bits_out_of_range"},
		{"timestamp 40", func(c *Config) { c.TimestampBits = 40 }, true, "timestamp_bits_out_of_range"},
		{"timestamp 44", func(c *Config) { c.TimestampBits = 44 }, true, "timestamp_bits_out_of_range"},
		{"reserved producer id", func(c *Config) { c.ProducerID = 255 }, true, "producer_id_out_of_range"},
		{"negative epoch", func(c *Config) { c.EpochMs = -1 }, false, "epoch_negative"},
		{"future epoch", func(c *Config) { c.EpochMs = time.Now().Add(time.Hour).UnixMilli() }, false, "epoch_in_future"},
		{"zero wait interval", func(c *Config) { c.WaitInterval = 0 }, false, "wait_interval_not_positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			if tt.layout {
				assert.ErrorIs(t, err, ErrInvalidLayout)
			}
			assert.Equal(t, tt.code, xerrors.GetCode(err))

			_, err = NewFromConfig(cfg, WithLogger(clog.Discard()))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}

func TestNewFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProducerID = 9
	cfg.TimestampBits = 42
	cfg.EpochMs = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	gen, err := NewFromConfig(cfg, WithLogger(clog.Discard()))
	require.NoError(t, err)
	assert.Equal(t, uint8(9), gen.ProducerID())
	assert.Equal(t, uint8(14), gen.Layout().SequenceBits())

	id, err := gen.Next()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), gen.Decompose(id).Time(cfg.Epoch()), time.Second)
}

func TestNewFromConfigOptionsOverride(t *testing.T) {
	cfg := DefaultConfig()
	clock := ClockFunc(func() uint64 { return 42 })

	gen, err := NewFromConfig(cfg, WithLogger(clog.Discard()), WithClock(clock))
	require.NoError(t, err)

	id, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), gen.Decompose(id).Timestamp)
}

func TestConfigFromLoader(t *testing.T) {
	dir := t.TempDir()
	content := `
idgen:
  producer_id: 12
  producer_bits: 6
  timestamp_bits: 43
  epoch_ms: 1704067200000
  wait_interval: 250us
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	loader, err := config.Load(context.Background(), config.WithConfigPaths(dir), config.WithEnvPrefix("FLAKETEST_IDGEN"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, loader.UnmarshalKey("idgen", cfg))
	assert.Equal(t, uint8(12), cfg.ProducerID)
	assert.Equal(t, uint8(6), cfg.ProducerBits)
	assert.Equal(t, uint8(43), cfg.TimestampBits)
	assert.Equal(t, int64(1704067200000), cfg.EpochMs)
	assert.Equal(t, 250*time.Microsecond, cfg.WaitInterval)

	gen, err := NewFromConfig(cfg, WithLogger(clog.Discard()))
	require.NoError(t, err)
	assert.Equal(t, uint8(15), gen.Layout().SequenceBits())
}

func TestConfigFromLoaderEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := `
idgen:
  producer_id: 12
  producer_bits: 6
  timestamp_bits: 43
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Setenv("FLAKETEST_IDGEN_IDGEN_PRODUCER_ID", "21")
	t.Setenv("FLAKETEST_IDGEN_IDGEN_WAIT_INTERVAL", "300us")

	loader, err := config.Load(context.Background(), config.WithConfigPaths(dir), config.WithEnvPrefix("FLAKETEST_IDGEN"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, loader.UnmarshalKey("idgen", cfg))
	assert.Equal(t, uint8(21), cfg.ProducerID)
	assert.Equal(t, uint8(6), cfg.ProducerBits)
	assert.Equal(t, 300*time.Microsecond, cfg.WaitInterval)
	require.NoError(t, cfg.Validate())
}
