package rules

import (
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Calculate returns the discount a policy grants on line, floored to the
// minor unit and clamped to [0, LineAmount].
func Calculate(policy policydomain.DiscountPolicy, line pricingdomain.OrderLine) int64 {
	if line.LineAmount <= 0 {
		return 0
	}

	var amount int64
	switch policy.DiscountType {
	case policydomain.TypeRate:
		if policy.Rate == nil {
			return 0
		}
		amount = capped(rateAmount(line.LineAmount, *policy.Rate), policy.MaxDiscountAmount)
	case policydomain.TypeFixedPrice:
		if policy.FixedAmount == nil {
			return 0
		}
		amount = *policy.FixedAmount
	case policydomain.TypeTieredRate:
		tier, ok := selectTier(policy.Tiers, line)
		if !ok || tier.Rate == nil {
			return 0
		}
		amount = capped(rateAmount(line.LineAmount, *tier.Rate), policy.MaxDiscountAmount)
	case policydomain.TypeTieredPrice:
		tier, ok := selectTier(policy.Tiers, line)
		if !ok || tier.FixedAmount == nil {
			return 0
		}
		amount = *tier.FixedAmount
	default:
		return 0
	}

	return clamp(amount, 0, line.LineAmount)
}

// selectTier picks the single highest tier whose threshold the line reaches.
func selectTier(tiers []policydomain.Tier, line pricingdomain.OrderLine) (policydomain.Tier, bool) {
	reached := lo.Filter(tiers, func(tier policydomain.Tier, _ int) bool {
		switch tier.Basis {
		case policydomain.TierBasisQuantity:
			return line.Quantity >= tier.Threshold
		case policydomain.TierBasisAmount:
			return line.LineAmount >= tier.Threshold
		default:
			return false
		}
	})
	if len(reached) == 0 {
		return policydomain.Tier{}, false
	}
	return lo.MaxBy(reached, func(a, b policydomain.Tier) bool {
		return a.Threshold > b.Threshold
	}), true
}

func rateAmount(lineAmount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(lineAmount).Mul(rate).Shift(-2).Floor().IntPart()
}

func capped(amount int64, limit *int64) int64 {
	if limit == nil {
		return amount
	}
	return min(amount, *limit)
}

func clamp(v, floor, ceil int64) int64 {
	return max(floor, min(v, ceil))
}
