package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/salesledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyReportClient = "salesledger:report:client:%s"

// ReportLimiter throttles report reads per client. A nil limiter allows
// everything, which is what runs when no redis address is configured.
type ReportLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewReportLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*ReportLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		log.Info("report rate limit disabled")
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.ReportRate <= 0 || limitCfg.ReportBurst <= 0 {
		return nil, errors.New("report rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("report rate limit enabled",
		zap.String("redis_addr", addr),
		zap.Float64("rate", limitCfg.ReportRate),
		zap.Int("burst", limitCfg.ReportBurst),
	)
	return newReportLimiter(NewTokenBucket(client), limitCfg.ReportRate, limitCfg.ReportBurst), nil
}

func newReportLimiter(bucket *TokenBucket, rate float64, burst int) *ReportLimiter {
	return &ReportLimiter{bucket: bucket, rate: rate, burst: burst}
}

func (l *ReportLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes one token from the client's bucket.
func (l *ReportLimiter) Allow(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyReportClient, clientKey), l.rate, l.burst)
}
