package observability

import (
	"strings"

	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/observability/metrics"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

const defaultServiceName = "discount-engine"

// Module installs the tracer and meter providers and the pricing and usage
// instruments built on top of them.
var Module = fx.Module("observability",
	fx.Provide(
		TracingConfig,
		tracing.NewProvider,
		MetricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewUsageMetrics,
	),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

func TracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Telemetry.Enabled,
		ServiceName:      serviceName(cfg),
		ServiceVersion:   strings.TrimSpace(cfg.AppVersion),
		Environment:      strings.TrimSpace(cfg.Environment),
		ExporterEndpoint: cfg.Telemetry.Endpoint,
		ExporterProtocol: cfg.Telemetry.Protocol,
		SamplingRatio:    cfg.Telemetry.SamplingRatio,
	}
}

func MetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.Telemetry.Enabled,
		ExporterEndpoint: cfg.Telemetry.Endpoint,
		ExporterProtocol: cfg.Telemetry.Protocol,
		ServiceName:      serviceName(cfg),
		Environment:      strings.TrimSpace(cfg.Environment),
	}
}

func serviceName(cfg config.Config) string {
	if name := strings.TrimSpace(cfg.AppName); name != "" {
		return name
	}
	return defaultServiceName
}
