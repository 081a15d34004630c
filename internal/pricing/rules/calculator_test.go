package rules

import (
	"testing"

	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculateRate(t *testing.T) {
	policy := ratePolicy(1, policydomain.GroupProduct, 10, 10)

	assert.Equal(t, int64(10000), Calculate(policy, pricingdomain.OrderLine{LineAmount: 100000, Quantity: 1}))
	// floor to the minor unit
	assert.Equal(t, int64(99), Calculate(policy, pricingdomain.OrderLine{LineAmount: 999, Quantity: 1}))
}

func TestCalculateRateCapped(t *testing.T) {
	policy := ratePolicy(1, policydomain.GroupProduct, 10, 10)
	policy.MaxDiscountAmount = int64Ptr(5000)

	assert.Equal(t, int64(5000), Calculate(policy, pricingdomain.OrderLine{LineAmount: 100000, Quantity: 1}))
}

func TestCalculateFractionalRate(t *testing.T) {
	policy := ratePolicy(1, policydomain.GroupProduct, 0, 10)
	policy.Rate = decimalPtr("12.5")

	assert.Equal(t, int64(1249), Calculate(policy, pricingdomain.OrderLine{LineAmount: 9999, Quantity: 1}))
}

func TestCalculateFixedLimitedToLineAmount(t *testing.T) {
	policy := fixedPolicy(1, policydomain.GroupProduct, 20000, 10)

	assert.Equal(t, int64(15000), Calculate(policy, pricingdomain.OrderLine{LineAmount: 15000, Quantity: 1}))
	assert.Equal(t, int64(20000), Calculate(policy, pricingdomain.OrderLine{LineAmount: 50000, Quantity: 1}))
}

func TestCalculateNonPositiveLineAmount(t *testing.T) {
	rate := ratePolicy(1, policydomain.GroupProduct, 10, 10)
	fixed := fixedPolicy(2, policydomain.GroupProduct, 1000, 10)

	for _, amount := range []int64{0, -100} {
		line := pricingdomain.OrderLine{LineAmount: amount, Quantity: 1}
		assert.Zero(t, Calculate(rate, line))
		assert.Zero(t, Calculate(fixed, line))
	}
}

func TestCalculateTieredRatePicksHighestReachedTier(t *testing.T) {
	policy := ratePolicy(1, policydomain.GroupProduct, 0, 10)
	policy.DiscountType = policydomain.TypeTieredRate
	policy.Rate = nil
	policy.Tiers = []policydomain.Tier{
		{Basis: policydomain.TierBasisQuantity, Threshold: 5, Rate: decimalPtr("10")},
		{Basis: policydomain.TierBasisQuantity, Threshold: 2, Rate: decimalPtr("5")},
		{Basis: policydomain.TierBasisQuantity, Threshold: 10, Rate: decimalPtr("15")},
	}

	cases := []struct {
		quantity int64
		want     int64
	}{
		{quantity: 1, want: 0},
		{quantity: 2, want: 500},
		{quantity: 7, want: 1000},
		{quantity: 10, want: 1500},
		{quantity: 50, want: 1500},
	}
	for _, tc := range cases {
		line := pricingdomain.OrderLine{LineAmount: 10000, Quantity: tc.quantity}
		assert.Equal(t, tc.want, Calculate(policy, line), "quantity %d", tc.quantity)
	}
}

func TestCalculateTieredPriceByAmount(t *testing.T) {
	policy := fixedPolicy(1, policydomain.GroupProduct, 0, 10)
	policy.DiscountType = policydomain.TypeTieredPrice
	policy.FixedAmount = nil
	policy.Tiers = []policydomain.Tier{
		{Basis: policydomain.TierBasisAmount, Threshold: 30000, FixedAmount: int64Ptr(3000)},
		{Basis: policydomain.TierBasisAmount, Threshold: 50000, FixedAmount: int64Ptr(6000)},
	}

	assert.Zero(t, Calculate(policy, pricingdomain.OrderLine{LineAmount: 29999, Quantity: 1}))
	assert.Equal(t, int64(3000), Calculate(policy, pricingdomain.OrderLine{LineAmount: 30000, Quantity: 1}))
	assert.Equal(t, int64(6000), Calculate(policy, pricingdomain.OrderLine{LineAmount: 80000, Quantity: 1}))
}

func TestCalculateNeverExceedsLineAmount(t *testing.T) {
	full := ratePolicy(1, policydomain.GroupProduct, 100, 10)
	for _, amount := range []int64{1, 7, 333, 100000} {
		line := pricingdomain.OrderLine{LineAmount: amount, Quantity: 1}
		got := Calculate(full, line)
		assert.GreaterOrEqual(t, got, int64(0))
		assert.LessOrEqual(t, got, amount)
	}
}
