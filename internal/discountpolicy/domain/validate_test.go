package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRatePolicy() DiscountPolicy {
	rate := decimal.NewFromInt(10)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return DiscountPolicy{
		ID:                     snowflake.ID(1),
		DiscountGroup:          GroupProduct,
		DiscountType:           TypeRate,
		TargetType:             TargetAll,
		Rate:                   &rate,
		ValidStartAt:           start,
		ValidEndAt:             start.Add(24 * time.Hour),
		PlatformCostShareRatio: decimal.NewFromInt(60),
		SellerCostShareRatio:   decimal.NewFromInt(40),
		Priority:               10,
		Active:                 true,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *DiscountPolicy)
		want   error
	}{
		{name: "valid rate", mutate: func(p *DiscountPolicy) {}},
		{
			name: "valid fixed",
			mutate: func(p *DiscountPolicy) {
				p.DiscountType = TypeFixedPrice
				p.Rate = nil
				p.FixedAmount = int64Ptr(20000)
			},
		},
		{
			name:   "ratio sum not hundred",
			mutate: func(p *DiscountPolicy) { p.SellerCostShareRatio = decimal.NewFromInt(30) },
			want:   ErrInvalidCostShare,
		},
		{
			name: "fractional ratios summing to hundred",
			mutate: func(p *DiscountPolicy) {
				p.PlatformCostShareRatio = decimal.RequireFromString("33.5")
				p.SellerCostShareRatio = decimal.RequireFromString("66.5")
			},
		},
		{
			name:   "rate missing",
			mutate: func(p *DiscountPolicy) { p.Rate = nil },
			want:   ErrMissingRate,
		},
		{
			name:   "rate above hundred",
			mutate: func(p *DiscountPolicy) { p.Rate = decimalPtr(101) },
			want:   ErrInvalidRate,
		},
		{
			name:   "negative rate",
			mutate: func(p *DiscountPolicy) { p.Rate = decimalPtr(-1) },
			want:   ErrInvalidRate,
		},
		{
			name: "fixed amount missing",
			mutate: func(p *DiscountPolicy) {
				p.DiscountType = TypeFixedPrice
			},
			want: ErrMissingFixedAmount,
		},
		{
			name:   "window not ordered",
			mutate: func(p *DiscountPolicy) { p.ValidEndAt = p.ValidStartAt },
			want:   ErrInvalidWindow,
		},
		{
			name:   "priority zero",
			mutate: func(p *DiscountPolicy) { p.Priority = 0 },
			want:   ErrInvalidPriority,
		},
		{
			name:   "priority above range",
			mutate: func(p *DiscountPolicy) { p.Priority = 1001 },
			want:   ErrInvalidPriority,
		},
		{
			name:   "negative cap",
			mutate: func(p *DiscountPolicy) { p.MaxDiscountAmount = int64Ptr(-1) },
			want:   ErrNegativeAmount,
		},
		{
			name:   "target id required",
			mutate: func(p *DiscountPolicy) { p.TargetType = TargetBrand },
			want:   ErrMissingTarget,
		},
		{
			name:   "unknown group",
			mutate: func(p *DiscountPolicy) { p.DiscountGroup = "SHIPPING" },
			want:   ErrInvalidDiscountGroup,
		},
		{
			name: "tiered without tiers",
			mutate: func(p *DiscountPolicy) {
				p.DiscountType = TypeTieredRate
			},
			want: ErrMissingTiers,
		},
		{
			name: "tiered price tier without amount",
			mutate: func(p *DiscountPolicy) {
				p.DiscountType = TypeTieredPrice
				p.Tiers = []Tier{{Basis: TierBasisQuantity, Threshold: 2}}
			},
			want: ErrMissingFixedAmount,
		},
		{
			name: "tiers with mixed basis",
			mutate: func(p *DiscountPolicy) {
				p.DiscountType = TypeTieredRate
				p.Tiers = []Tier{
					{Basis: TierBasisQuantity, Threshold: 2, Rate: decimalPtr(5)},
					{Basis: TierBasisAmount, Threshold: 50000, Rate: decimalPtr(10)},
				}
			},
			want: ErrInvalidTier,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := validRatePolicy()
			tc.mutate(&policy)

			err := Validate(policy)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.want), "expected %v, got %v", tc.want, err)
		})
	}
}

func TestActiveAtIsHalfOpen(t *testing.T) {
	policy := validRatePolicy()

	assert.True(t, policy.ActiveAt(policy.ValidStartAt))
	assert.True(t, policy.ActiveAt(policy.ValidEndAt.Add(-time.Nanosecond)))
	assert.False(t, policy.ActiveAt(policy.ValidEndAt))
	assert.False(t, policy.ActiveAt(policy.ValidStartAt.Add(-time.Second)))

	policy.Active = false
	assert.False(t, policy.ActiveAt(policy.ValidStartAt))
}

func TestViolationCode(t *testing.T) {
	policy := validRatePolicy()
	policy.Priority = 0

	assert.Equal(t, "invalid_priority", ViolationCode(Validate(policy)))
	assert.Equal(t, "unknown", ViolationCode(errors.New("boom")))
}
