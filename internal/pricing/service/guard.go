package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	obsmetrics "github.com/ryu-qqq/setof-commerce-sub024/internal/observability/metrics"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/rules"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/log/ctxlogger"
	"go.uber.org/zap"
)

// usageGuard reserves usage for group winners that carry a ceiling. A winner
// whose reservation is refused is dropped; the next-ranked policy of the same
// group is not promoted.
type usageGuard struct {
	counter usagedomain.Counter
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func (g *usageGuard) admit(ctx context.Context, winners []rules.Candidate, memberID snowflake.ID) ([]rules.Candidate, []pricingdomain.Rejection, error) {
	for _, winner := range winners {
		if winner.Policy.MaxUsagePerCustomer != nil && memberID == usagedomain.TotalMemberID {
			return nil, nil, fmt.Errorf("policy %s: %w", winner.Policy.ID, pricingdomain.ErrMissingMember)
		}
	}

	var (
		admitted   []rules.Candidate
		rejections []pricingdomain.Rejection
		reserved   []snowflake.ID
	)
	for _, winner := range winners {
		policy := winner.Policy
		if !policy.HasUsageLimit() {
			admitted = append(admitted, winner)
			continue
		}

		decision, err := g.counter.Reserve(ctx, usagedomain.Reservation{
			PolicyID:       policy.ID,
			MemberID:       memberID,
			MaxPerCustomer: policy.MaxUsagePerCustomer,
			MaxTotal:       policy.MaxTotalUsage,
		})
		switch {
		case errors.Is(err, usagedomain.ErrReservationContended):
			decision = usagedomain.Rejected(usagedomain.ReasonContended)
		case err != nil:
			g.releaseAll(ctx, reserved, memberID)
			return nil, nil, fmt.Errorf("reserve usage: %w", err)
		}

		if !decision.Accepted {
			ctxlogger.WithContext(ctx, g.log).Info("discount rejected by usage ceiling",
				zap.String("policy_id", policy.ID.String()),
				zap.String("member_id", memberID.String()),
				zap.String("reason", string(decision.Reason)),
			)
			g.metrics.RecordUsageRejection(ctx, string(policy.DiscountGroup), string(decision.Reason))
			rejections = append(rejections, pricingdomain.Rejection{
				PolicyID:      policy.ID,
				DiscountGroup: policy.DiscountGroup,
				Reason:        decision.Reason,
			})
			continue
		}

		reserved = append(reserved, policy.ID)
		admitted = append(admitted, winner)
	}
	return admitted, rejections, nil
}

// releaseAll gives back reservations taken earlier in a failed evaluation. It
// runs detached from ctx so a cancelled request still compensates.
func (g *usageGuard) releaseAll(ctx context.Context, policyIDs []snowflake.ID, memberID snowflake.ID) {
	ctx = context.WithoutCancel(ctx)
	for _, policyID := range policyIDs {
		if err := g.counter.Release(ctx, policyID, memberID); err != nil {
			ctxlogger.WithContext(ctx, g.log).Error("failed to release usage reservation",
				zap.String("policy_id", policyID.String()),
				zap.String("member_id", memberID.String()),
				zap.Error(err),
			)
		}
	}
}
