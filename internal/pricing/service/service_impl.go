package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/clock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	obsmetrics "github.com/ryu-qqq/setof-commerce-sub024/internal/observability/metrics"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/rules"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/log/ctxlogger"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	outcomeApplied  = "applied"
	outcomeNoDisc   = "no_discount"
	outcomeRejected = "invalid_request"
	outcomeFailed   = "error"
)

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	tracer  trace.Tracer
	catalog policydomain.Catalog
	tuning  *config.PricingTuningHolder
	metrics *obsmetrics.Metrics
	guard   *usageGuard
	counter usagedomain.Counter
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Catalog policydomain.Catalog
	Counter usagedomain.Counter
	Tuning  *config.PricingTuningHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func New(p Params) pricingdomain.Service {
	log := p.Log.Named("pricing.service")
	return &Service{
		log:     log,
		clock:   p.Clock,
		tracer:  otel.Tracer("pricing"),
		catalog: p.Catalog,
		tuning:  p.Tuning,
		metrics: p.Metrics,
		counter: p.Counter,
		guard: &usageGuard{
			counter: p.Counter,
			log:     log,
			metrics: p.Metrics,
		},
	}
}

// Evaluate prices one order line: it loads the eligible policies, keeps the
// best policy per discount group, reserves usage for the winners and splits
// each discount between platform and seller.
func (s *Service) Evaluate(ctx context.Context, line pricingdomain.OrderLine, memberID snowflake.ID) (*pricingdomain.PricingResult, error) {
	if line.LineAmount < 0 {
		s.metrics.RecordEvaluation(ctx, outcomeRejected)
		return nil, fmt.Errorf("line amount %d: %w", line.LineAmount, pricingdomain.ErrInvalidLineAmount)
	}
	if line.Quantity < 0 {
		s.metrics.RecordEvaluation(ctx, outcomeRejected)
		return nil, fmt.Errorf("quantity %d: %w", line.Quantity, pricingdomain.ErrInvalidQuantity)
	}

	ctx, span := s.tracer.Start(ctx, "pricing.Evaluate", trace.WithAttributes(
		attribute.String("product_id", line.ProductID.String()),
		attribute.String("seller_id", line.SellerID.String()),
		attribute.Int64("line_amount", line.LineAmount),
	))
	defer span.End()

	if timeout := s.tuning.Get().EvaluateTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := s.clock.Now()
	result, err := s.evaluate(ctx, line, memberID)
	outcome := evaluationOutcome(result, err)
	s.metrics.RecordEvaluation(ctx, outcome)
	s.metrics.RecordEvaluationLatency(ctx, outcome, s.clock.Now().Sub(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("discount_count", len(result.Discounts)),
		attribute.Int64("total_discount", result.TotalDiscount),
	)
	return result, nil
}

func evaluationOutcome(result *pricingdomain.PricingResult, err error) string {
	switch {
	case errors.Is(err, pricingdomain.ErrMissingMember):
		return outcomeRejected
	case err != nil:
		return outcomeFailed
	case len(result.Discounts) == 0:
		return outcomeNoDisc
	default:
		return outcomeApplied
	}
}

func (s *Service) evaluate(ctx context.Context, line pricingdomain.OrderLine, memberID snowflake.ID) (*pricingdomain.PricingResult, error) {
	at := s.clock.Now()
	policies, err := s.catalog.LoadEligible(ctx, policydomain.CatalogQuery{
		SellerID:   line.SellerID,
		CategoryID: line.CategoryID,
		BrandID:    line.BrandID,
		ProductID:  line.ProductID,
		AsOf:       at,
	})
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	matched, skipped := rules.Match(line, policies, at)
	log := ctxlogger.WithContext(ctx, s.log)
	for _, skip := range skipped {
		log.Warn("skipping malformed discount policy",
			zap.String("policy_id", skip.Policy.ID.String()),
			zap.Error(skip.Err),
		)
		s.metrics.RecordPolicySkipped(ctx, policydomain.ViolationCode(skip.Err))
	}

	candidates := lo.Map(matched, func(policy policydomain.DiscountPolicy, _ int) rules.Candidate {
		return rules.Candidate{Policy: policy, Amount: rules.Calculate(policy, line)}
	})
	winners := rules.Resolve(candidates)

	admitted, rejections, err := s.guard.admit(ctx, winners, memberID)
	if err != nil {
		return nil, err
	}

	result := &pricingdomain.PricingResult{
		LineAmount: line.LineAmount,
		Discounts:  make([]pricingdomain.AppliedDiscount, 0, len(admitted)),
		Rejections: rejections,
	}
	for _, winner := range admitted {
		platform, seller := rules.Split(winner.Policy, winner.Amount)
		result.Discounts = append(result.Discounts, pricingdomain.AppliedDiscount{
			PolicyID:       winner.Policy.ID,
			DiscountGroup:  winner.Policy.DiscountGroup,
			DiscountAmount: winner.Amount,
			PlatformShare:  platform,
			SellerShare:    seller,
			Priority:       winner.Policy.Priority,
		})
		result.TotalDiscount += winner.Amount
		s.metrics.RecordDiscountApplied(ctx, string(winner.Policy.DiscountGroup))
	}
	result.FinalAmount = max(0, result.LineAmount-result.TotalDiscount)

	return result, nil
}

// Release gives back one use of a policy, e.g. when the order is cancelled.
func (s *Service) Release(ctx context.Context, policyID, memberID snowflake.ID) error {
	if policyID == 0 {
		return pricingdomain.ErrInvalidPolicy
	}
	if err := s.counter.Release(ctx, policyID, memberID); err != nil {
		return fmt.Errorf("release usage: %w", err)
	}
	return nil
}
