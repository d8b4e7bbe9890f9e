package tracing

import (
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsCustomerFields(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/orders"),
		attribute.String("customer_phone", "0912"),
	)
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Key != "http.route" {
		t.Fatalf("expected http.route to be retained, got %s", attrs[0].Key)
	}
}

func TestSafeErrorTruncates(t *testing.T) {
	if SafeError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	err := SafeError(errors.New("first line\nINSERT INTO orders VALUES ('secret')"))
	if err.Error() != "first line" {
		t.Fatalf("expected first line only, got %q", err.Error())
	}
	long := SafeError(errors.New(strings.Repeat("x", 1000)))
	if len(long.Error()) != 256 {
		t.Fatalf("expected 256 chars, got %d", len(long.Error()))
	}
}
