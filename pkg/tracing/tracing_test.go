package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{
		ServiceName: "reviews-service",
		Enabled:     false,
	})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_EnabledRegistersProvider(t *testing.T) {
	// The batched exporter connects lazily, so an unreachable endpoint
	// still initializes.
	shutdown, err := Init(context.Background(), Config{
		ServiceName: "reviews-service",
		Environment: "test",
		Endpoint:    "127.0.0.1:0",
		SampleRate:  1.0,
		Enabled:     true,
	})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	defer shutdown(context.Background()) //nolint:errcheck

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "global tracer provider should be the SDK provider")
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample(), sampler(1.0))
	assert.Equal(t, sdktrace.NeverSample(), sampler(0.0))
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}
