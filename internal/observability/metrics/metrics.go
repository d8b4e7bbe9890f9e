package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes ledger and report instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	ordersCreated    metric.Int64Counter
	ordersDeleted    metric.Int64Counter
	orderItems       metric.Int64Counter
	orderFailures    metric.Int64Counter
	reportDuration   metric.Float64Histogram
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "salesledger"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.ordersCreated, err = meter.Int64Counter("salesledger_orders_created_total"); err != nil {
		return nil, err
	}
	if m.ordersDeleted, err = meter.Int64Counter("salesledger_orders_deleted_total"); err != nil {
		return nil, err
	}
	if m.orderItems, err = meter.Int64Counter("salesledger_order_items_total"); err != nil {
		return nil, err
	}
	if m.orderFailures, err = meter.Int64Counter("salesledger_order_failures_total"); err != nil {
		return nil, err
	}
	if m.reportDuration, err = meter.Float64Histogram(
		"salesledger_report_duration_seconds",
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.rateLimitAllowed, err = meter.Int64Counter("salesledger_rate_limit_allowed_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("salesledger_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordOrderCreated counts a committed order and its items.
func (m *Metrics) RecordOrderCreated(ctx context.Context, itemCount int) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1)
	m.orderItems.Add(ctx, int64(itemCount))
}

func (m *Metrics) RecordOrderDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersDeleted.Add(ctx, 1)
}

// RecordOrderFailure counts rejected or rolled back order writes by reason.
func (m *Metrics) RecordOrderFailure(ctx context.Context, operation, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.orderFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReport observes how long one aggregator operation took.
func (m *Metrics) RecordReport(ctx context.Context, report, period string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("report", strings.TrimSpace(report)),
		attribute.String("period", strings.TrimSpace(period)),
	)
	m.reportDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"method":      {},
	"status_code": {},
	"operation":   {},
	"reason":      {},
	"report":      {},
	"period":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
