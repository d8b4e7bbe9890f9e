package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/salesledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewReportLimiterDisabledWithoutRedis(t *testing.T) {
	limiter, err := NewReportLimiter(nil, config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewReportLimiterRejectsBadLimits(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{
		Enabled:     true,
		RedisAddr:   "localhost:6379",
		ReportRate:  0,
		ReportBurst: 10,
	}}
	_, err := NewReportLimiter(nil, cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.RateLimit.RedisAddr = " "
	cfg.RateLimit.ReportRate = 1
	_, err = NewReportLimiter(nil, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestTokenBucketRequiresClient(t *testing.T) {
	var bucket *TokenBucket
	res, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, res.Allowed)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 10))
	assert.Equal(t, 4*time.Second, defaultBucketTTL(20, 40))
	assert.Equal(t, time.Second, defaultBucketTTL(1000, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.EqualValues(t, 1, castToInt(int64(1)))
	assert.EqualValues(t, 3, castToInt(3.7))
	assert.EqualValues(t, 0, castToInt("x"))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
	assert.Equal(t, 0.0, castToFloat(nil))
}
