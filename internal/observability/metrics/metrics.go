package metrics

import (
	"context"
	"fmt"
	"strconv"
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

// Metrics holds the pricing and HTTP instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	evaluations       metric.Int64Counter
	evaluationLatency metric.Float64Histogram
	discountsApplied  metric.Int64Counter
	usageRejections   metric.Int64Counter
	policiesSkipped   metric.Int64Counter
	httpRequests      metric.Int64Counter
	rateLimited       metric.Int64Counter
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
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New registers the instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "discount-engine"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.evaluations, "pricing_evaluations_total", "Pricing evaluations by outcome."},
		{&m.discountsApplied, "pricing_discounts_applied_total", "Discounts applied by discount group."},
		{&m.usageRejections, "pricing_usage_rejections_total", "Winning policies dropped by a usage ceiling."},
		{&m.policiesSkipped, "pricing_policies_skipped_total", "Malformed policies skipped during matching."},
		{&m.httpRequests, "http_requests_total", "Handled HTTP requests by route and status."},
		{&m.rateLimited, "http_rate_limited_total", "HTTP requests refused by the rate limiter."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	latency, err := meter.Float64Histogram("pricing_evaluation_duration_seconds",
		metric.WithDescription("Wall time of one pricing evaluation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2),
	)
	if err != nil {
		return nil, fmt.Errorf("histogram pricing_evaluation_duration_seconds: %w", err)
	}
	m.evaluationLatency = latency

	return m, nil
}

// RecordEvaluation increments evaluation counts by outcome.
func (m *Metrics) RecordEvaluation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.evaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDiscountApplied increments applied discount counts per group.
func (m *Metrics) RecordDiscountApplied(ctx context.Context, group string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("discount_group", strings.TrimSpace(group)))
	m.discountsApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUsageRejection increments usage ceiling rejections.
func (m *Metrics) RecordUsageRejection(ctx context.Context, group, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("discount_group", strings.TrimSpace(group)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.usageRejections.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordEvaluationLatency(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.evaluationLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPolicySkipped increments malformed policy skips.
func (m *Metrics) RecordPolicySkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.policiesSkipped.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHTTPRequest counts handled requests per route template and status.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, endpoint string, statusCode int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimited(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
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
	"outcome":        {},
	"discount_group": {},
	"reason":         {},
	"backend":        {},
	"endpoint":       {},
	"status_code":    {},
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
