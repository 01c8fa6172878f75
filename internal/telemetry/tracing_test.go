package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/rafipicu1/bartertalco-sub000/internal/config"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
)

func TestInitTracingDisabledWithoutEndpoint(t *testing.T) {
	cfg := &config.Config{}
	before := otel.GetTracerProvider()

	shutdown, err := InitTracing(context.Background(), cfg, logger.Discard())

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInitTracingInstallsProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Telemetry.OTLPEndpoint = "127.0.0.1:4317"
	cfg.Telemetry.ServiceName = "barter-core-test"
	before := otel.GetTracerProvider()

	// the exporter connects lazily, so no collector is needed
	shutdown, err := InitTracing(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	assert.NotEqual(t, before, otel.GetTracerProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
