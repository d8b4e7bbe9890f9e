package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/salesledger/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware opens a server span per request.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("salesledger/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		method := strings.ToUpper(c.Request.Method)
		ctx, span := tracer.Start(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName("HTTP " + method + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				span.RecordError(SafeError(lastErr.Err))
			}
			span.SetStatus(codes.Error, "request error")
		}
	}
}
