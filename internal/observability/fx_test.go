package observability

import (
	"testing"

	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestConfigsShareTelemetrySettings(t *testing.T) {
	cfg := config.Config{
		AppVersion:  "1.2.0",
		Environment: "staging",
		Telemetry: config.TelemetryConfig{
			Enabled:       true,
			Endpoint:      "collector:4317",
			Protocol:      "grpc",
			SamplingRatio: 0.5,
		},
	}

	tc := TracingConfig(cfg)
	mc := MetricsConfig(cfg)

	assert.Equal(t, defaultServiceName, tc.ServiceName)
	assert.Equal(t, tc.ServiceName, mc.ServiceName)
	assert.Equal(t, "1.2.0", tc.ServiceVersion)
	assert.Equal(t, 0.5, tc.SamplingRatio)
	assert.Equal(t, "collector:4317", mc.ExporterEndpoint)
	assert.True(t, mc.Enabled)
}
