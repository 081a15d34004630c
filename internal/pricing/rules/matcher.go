package rules

import (
	"time"

	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
)

// Skipped is a policy dropped because its configuration is malformed.
type Skipped struct {
	Policy policydomain.DiscountPolicy
	Err    error
}

// Match keeps the policies applicable to line at the given instant. Policies
// failing validation are returned separately so the caller can report them;
// every other non-matching policy is dropped silently.
func Match(line pricingdomain.OrderLine, policies []policydomain.DiscountPolicy, at time.Time) ([]policydomain.DiscountPolicy, []Skipped) {
	var (
		matched []policydomain.DiscountPolicy
		skipped []Skipped
	)
	for _, policy := range policies {
		if err := policydomain.Validate(policy); err != nil {
			skipped = append(skipped, Skipped{Policy: policy, Err: err})
			continue
		}
		if !policy.ActiveAt(at) {
			continue
		}
		if policy.MinOrderAmount != nil && line.LineAmount < *policy.MinOrderAmount {
			continue
		}
		if !targets(policy, line) {
			continue
		}
		matched = append(matched, policy)
	}
	return matched, skipped
}

func targets(policy policydomain.DiscountPolicy, line pricingdomain.OrderLine) bool {
	switch policy.TargetType {
	case policydomain.TargetAll:
		return true
	case policydomain.TargetProduct:
		return sameID(policy.TargetID, line.ProductID)
	case policydomain.TargetCategory:
		return sameID(policy.TargetID, line.CategoryID)
	case policydomain.TargetSeller:
		return sameID(policy.TargetID, line.SellerID)
	case policydomain.TargetBrand:
		return sameID(policy.TargetID, line.BrandID)
	default:
		return false
	}
}

func sameID[T comparable](target *T, value T) bool {
	return target != nil && *target == value
}
