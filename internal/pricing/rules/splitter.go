package rules

import (
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"github.com/shopspring/decimal"
)

// Split divides a discount between platform and seller. The platform share is
// rounded half away from zero and the seller takes the remainder, so the two
// always add up to amount.
func Split(policy policydomain.DiscountPolicy, amount int64) (platform, seller int64) {
	platform = decimal.NewFromInt(amount).
		Mul(policy.PlatformCostShareRatio).
		Shift(-2).
		Round(0).
		IntPart()
	return platform, amount - platform
}
