package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReportingConfigIsValid(t *testing.T) {
	require.NoError(t, validateReportingConfig(DefaultReportingConfig()))
}

func TestValidateReportingConfigRejectsBadLimits(t *testing.T) {
	cfg := DefaultReportingConfig()
	cfg.TopProductsDefault = 200
	assert.Error(t, validateReportingConfig(cfg))

	cfg = DefaultReportingConfig()
	cfg.MaxCustomRangeDays = 0
	assert.Error(t, validateReportingConfig(cfg))

	cfg = DefaultReportingConfig()
	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, validateReportingConfig(cfg))
}

func TestReportingConfigLocationFallsBackToUTC(t *testing.T) {
	cfg := ReportingConfig{Timezone: ""}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "not/a-zone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestNilHolderReturnsDefaults(t *testing.T) {
	var holder *ReportingConfigHolder
	assert.Equal(t, DefaultReportingConfig(), holder.Get())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "7")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 7, cfg.DBMaxOpenConn)
	assert.False(t, cfg.RateLimit.Enabled)
}
