package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/salesledger/internal/observability/logger"
	"go.uber.org/zap"
)

const rateLimitReasonClientRate = "client-rate"

// ReportRateLimit throttles report reads per client IP when a limiter is
// configured.
func (s *Server) ReportRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.reportLimiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)

		res, err := s.reportLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("report rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		if res.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
		}

		if !res.Allowed {
			logger.FromContext(ctx).Warn("report rate limit exceeded",
				zap.String("reason", rateLimitReasonClientRate),
				zap.String("endpoint", endpoint),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonClientRate)

			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-Rate-Limited-Reason", rateLimitReasonClientRate)
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
