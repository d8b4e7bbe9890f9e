package observability

import (
	"testing"

	"github.com/smallbiznis/salesledger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigMapsAppConfig(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:     "ledger",
		AppVersion:  "2.0.0",
		Environment: "production",
		Observability: config.ObservabilityConfig{
			LogLevel:     "warn",
			LogFormat:    "console",
			OtelEnabled:  true,
			OtelEndpoint: "collector:4317",
			OtelProtocol: "http",
			OtelSampling: 3,
		},
	})

	assert.Equal(t, "ledger", cfg.ServiceName)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigFillsBlanks(t *testing.T) {
	cfg := LoadConfig(config.Config{Environment: "test"})

	assert.Equal(t, "salesledger", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.True(t, cfg.Debug())

	assert.True(t, Config{LogLevel: "debug", Environment: "production"}.Debug())
}
