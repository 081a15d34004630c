package metrics

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("discount_group", "PRODUCT"),
		attribute.String("member_id", "456"),
		attribute.String("reason", "total_limit"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "discount_group" && attrs[1].Key != "discount_group" {
		t.Fatalf("expected discount_group to be retained")
	}
	if attrs[0].Key != "reason" && attrs[1].Key != "reason" {
		t.Fatalf("expected reason to be retained")
	}
}

func TestRecordersOnNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	ctx := context.Background()
	m.RecordEvaluation(ctx, "ok")
	m.RecordDiscountApplied(ctx, "PRODUCT")
	m.RecordUsageRejection(ctx, "MEMBER", "per_customer_limit")
	m.RecordPolicySkipped(ctx, "invalid_cost_share_ratio")
	m.RecordHTTPRequest(ctx, "/v1/pricing/evaluate", 200)
	m.RecordRateLimited(ctx, "/v1/pricing/evaluate")
	m.RecordEvaluationLatency(ctx, "applied", 3*time.Millisecond)

	var nilMetrics *Metrics
	nilMetrics.RecordEvaluation(ctx, "ok")
	nilMetrics.RecordEvaluationLatency(ctx, "ok", time.Second)
}
