package trace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ceyewan/flake/xerrors"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"empty service name", func(c *Config) { c.ServiceName = "" }},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }},
		{"sampler above one", func(c *Config) { c.Sampler = 1.5 }},
		{"negative sampler", func(c *Config) { c.Sampler = -0.1 }},
		{"unknown batcher", func(c *Config) { c.Batcher = "async" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("flake")
			tt.modify(cfg)
			_, err := Init(context.Background(), cfg)
			assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		})
	}

	_, err := Init(context.Background(), nil)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	require.NoError(t, validateConfig(DefaultConfig("flake")))
}

func TestDiscardProducesTraceIDs(t *testing.T) {
	shutdown, err := Discard("flake-test")
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := Tracer("flake/test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().TraceID().IsValid())
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("flake/test").Start(context.Background(), "allocate")
	RecordError(span, nil)
	RecordError(span, errors.New("lease lost"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "lease lost", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestInitInstallsGlobalProvider(t *testing.T) {
	cfg := DefaultConfig("flake-test")
	cfg.Endpoint = "127.0.0.1:1"
	cfg.Batcher = "simple"

	// gRPC 连接是惰性的，Init 不要求 collector 可达
	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)

	_, span := Tracer("flake/test").Start(context.Background(), "allocate")
	assert.True(t, span.SpanContext().IsValid())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
