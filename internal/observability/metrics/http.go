package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	meter := provider.Meter("salesledger/http")
	requests, err := meter.Int64Counter("salesledger_http_requests_total")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("salesledger_http_request_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// GinMiddleware records request count and latency per route template.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		attrs := metric.WithAttributes(FilterAttributes(
			attribute.String("endpoint", route),
			attribute.String("method", c.Request.Method),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)...)
		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
