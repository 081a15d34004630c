package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MinPriority = 1
	MaxPriority = 1000
)

var hundred = decimal.NewFromInt(100)

// Validate checks the static configuration of a policy. A policy that fails
// validation must never be applied.
func Validate(p DiscountPolicy) error {
	if !p.DiscountGroup.Valid() {
		return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidDiscountGroup)
	}
	if !p.DiscountType.Valid() {
		return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidDiscountType)
	}
	if !p.TargetType.Valid() {
		return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidTargetType)
	}
	if p.TargetType != TargetAll && p.TargetID == nil {
		return fmt.Errorf("policy %s: %w", p.ID, ErrMissingTarget)
	}
	if p.Priority < MinPriority || p.Priority > MaxPriority {
		return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidPriority)
	}
	if !p.ValidStartAt.Before(p.ValidEndAt) {
		return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidWindow)
	}
	if !p.PlatformCostShareRatio.Add(p.SellerCostShareRatio).Equal(hundred) ||
		p.PlatformCostShareRatio.IsNegative() || p.SellerCostShareRatio.IsNegative() {
		return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidCostShare)
	}
	for _, amount := range []*int64{p.FixedAmount, p.MaxDiscountAmount, p.MinOrderAmount, p.MaxUsagePerCustomer, p.MaxTotalUsage} {
		if amount != nil && *amount < 0 {
			return fmt.Errorf("policy %s: %w", p.ID, ErrNegativeAmount)
		}
	}

	switch p.DiscountType {
	case TypeRate:
		if p.Rate == nil {
			return fmt.Errorf("policy %s: %w", p.ID, ErrMissingRate)
		}
		if !validRate(*p.Rate) {
			return fmt.Errorf("policy %s: %w", p.ID, ErrInvalidRate)
		}
	case TypeFixedPrice:
		if p.FixedAmount == nil {
			return fmt.Errorf("policy %s: %w", p.ID, ErrMissingFixedAmount)
		}
	case TypeTieredRate, TypeTieredPrice:
		if err := validateTiers(p.DiscountType, p.Tiers); err != nil {
			return fmt.Errorf("policy %s: %w", p.ID, err)
		}
	}
	return nil
}

func validateTiers(kind DiscountType, tiers []Tier) error {
	if len(tiers) == 0 {
		return ErrMissingTiers
	}
	basis := tiers[0].Basis
	for _, tier := range tiers {
		if tier.Basis != TierBasisQuantity && tier.Basis != TierBasisAmount {
			return ErrInvalidTier
		}
		// a single tier table compares against one measure only
		if tier.Basis != basis {
			return ErrInvalidTier
		}
		if tier.Threshold < 0 {
			return ErrNegativeAmount
		}
		switch kind {
		case TypeTieredRate:
			if tier.Rate == nil {
				return ErrMissingRate
			}
			if !validRate(*tier.Rate) {
				return ErrInvalidRate
			}
		case TypeTieredPrice:
			if tier.FixedAmount == nil {
				return ErrMissingFixedAmount
			}
			if *tier.FixedAmount < 0 {
				return ErrNegativeAmount
			}
		}
	}
	return nil
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}
