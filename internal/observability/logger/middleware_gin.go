package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/salesledger/internal/observability/context"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-Id"

type MiddlewareConfig struct {
	Debug           bool
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware assigns a request id and logs one line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}

		if lastErr := c.Errors.Last(); lastErr != nil && cfg.ErrorClassifier != nil {
			errorType, errorCode := cfg.ErrorClassifier(lastErr.Err)
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if status >= http.StatusInternalServerError {
				fields = append(fields, zap.Error(lastErr.Err))
			}
		}

		log := FromContext(c.Request.Context())
		switch {
		case route == "/metrics" || route == "/health":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
	if requestID == "" || len(requestID) > 128 {
		requestID = uuid.NewString()
	}
	c.Set("request_id", requestID)
	c.Header(RequestIDHeader, requestID)
	return requestID
}
