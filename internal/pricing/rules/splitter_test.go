package rules

import (
	"testing"

	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSplitRoundsPlatformShareHalfAwayFromZero(t *testing.T) {
	policy := ratePolicy(1, policydomain.GroupProduct, 10, 10)
	policy.PlatformCostShareRatio = decimal.NewFromInt(50)
	policy.SellerCostShareRatio = decimal.NewFromInt(50)

	platform, seller := Split(policy, 1001)
	assert.Equal(t, int64(501), platform)
	assert.Equal(t, int64(500), seller)
}

func TestSplitSharesAlwaysSumToAmount(t *testing.T) {
	ratios := []string{"0", "12.5", "33.33", "50", "66.67", "99.99", "100"}
	amounts := []int64{0, 1, 3, 7, 999, 5000, 123457}

	for _, ratio := range ratios {
		policy := ratePolicy(1, policydomain.GroupProduct, 10, 10)
		policy.PlatformCostShareRatio = decimal.RequireFromString(ratio)
		policy.SellerCostShareRatio = decimal.NewFromInt(100).Sub(policy.PlatformCostShareRatio)

		for _, amount := range amounts {
			platform, seller := Split(policy, amount)
			assert.Equal(t, amount, platform+seller, "ratio %s amount %d", ratio, amount)
			assert.GreaterOrEqual(t, platform, int64(0))
			assert.GreaterOrEqual(t, seller, int64(0))
		}
	}
}

func TestSplitFullyPlatformFunded(t *testing.T) {
	policy := ratePolicy(1, policydomain.GroupProduct, 10, 10)
	policy.PlatformCostShareRatio = decimal.NewFromInt(100)
	policy.SellerCostShareRatio = decimal.Zero

	platform, seller := Split(policy, 4321)
	assert.Equal(t, int64(4321), platform)
	assert.Zero(t, seller)
}
