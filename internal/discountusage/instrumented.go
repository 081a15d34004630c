package discountusage

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	obsmetrics "github.com/ryu-qqq/setof-commerce-sub024/internal/observability/metrics"
)

type instrumentedCounter struct {
	next    usagedomain.Counter
	backend string
	metrics *obsmetrics.UsageMetrics
}

// Instrument records outcome and latency of every counter call.
func Instrument(next usagedomain.Counter, backend string, metrics *obsmetrics.UsageMetrics) usagedomain.Counter {
	if metrics == nil {
		return next
	}
	return &instrumentedCounter{next: next, backend: backend, metrics: metrics}
}

func (c *instrumentedCounter) Reserve(ctx context.Context, r usagedomain.Reservation) (usagedomain.Decision, error) {
	start := time.Now()
	decision, err := c.next.Reserve(ctx, r)

	result := obsmetrics.UsageResultAccepted
	switch {
	case err != nil:
		result = obsmetrics.UsageResultError
	case !decision.Accepted:
		result = obsmetrics.UsageResultRejected
	}
	c.metrics.ObserveReserve(c.backend, result, time.Since(start), err)
	return decision, err
}

func (c *instrumentedCounter) Release(ctx context.Context, policyID, memberID snowflake.ID) error {
	err := c.next.Release(ctx, policyID, memberID)
	c.metrics.ObserveRelease(c.backend, err)
	return err
}
