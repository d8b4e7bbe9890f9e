package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var blockedAttributeKeys = map[attribute.Key]struct{}{
	"customer_name":    {},
	"customer_phone":   {},
	"customer_address": {},
}

// SafeAttributes drops attributes that would carry customer contact data.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedAttributeKeys[attr.Key]; blocked {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError reduces err to its message's first line so SQL fragments with
// bound values never land in span events.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return errors.New(msg)
}

func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	).Extract(ctx, carrier)
}
