package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/clock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	policyrepo "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const demoValidity = 365 * 24 * time.Hour

var Module = fx.Module("seed",
	fx.Invoke(func(db *gorm.DB, node *snowflake.Node, clk clock.Clock, cfg config.Config, log *zap.Logger) error {
		if !cfg.SeedDemoPolicies {
			return nil
		}
		seeded, err := EnsureDemoPolicies(context.Background(), db, node, clk.Now())
		if err != nil {
			return err
		}
		if seeded > 0 {
			log.Named("seed").Info("demo discount policies seeded", zap.Int("count", seeded))
		}
		return nil
	}),
)

// EnsureDemoPolicies fills an empty catalog with one policy per discount
// group. It returns the number of policies written.
func EnsureDemoPolicies(ctx context.Context, db *gorm.DB, node *snowflake.Node, now time.Time) (int, error) {
	if db == nil || node == nil {
		return 0, errors.New("seed database handle and id node are required")
	}

	var existing int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM discount_policies`).Scan(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	policies := demoPolicies(node, now.UTC())
	for i := range policies {
		if err := policydomain.Validate(policies[i]); err != nil {
			return 0, err
		}
		if err := policyrepo.Insert(ctx, db, &policies[i]); err != nil {
			return 0, err
		}
	}
	return len(policies), nil
}

func demoPolicies(node *snowflake.Node, now time.Time) []policydomain.DiscountPolicy {
	base := func(name string, group policydomain.DiscountGroup, kind policydomain.DiscountType, priority int) policydomain.DiscountPolicy {
		return policydomain.DiscountPolicy{
			ID:                     node.Generate(),
			Name:                   name,
			DiscountGroup:          group,
			DiscountType:           kind,
			TargetType:             policydomain.TargetAll,
			ValidStartAt:           now,
			ValidEndAt:             now.Add(demoValidity),
			PlatformCostShareRatio: decimal.NewFromInt(100),
			SellerCostShareRatio:   decimal.Zero,
			Priority:               priority,
			Active:                 true,
			Metadata:               datatypes.JSONMap{"source": "seed"},
			CreatedAt:              now,
			UpdatedAt:              now,
		}
	}

	productRate := decimal.NewFromInt(10)
	product := base("Storewide 10%", policydomain.GroupProduct, policydomain.TypeRate, 100)
	product.Rate = &productRate
	product.MaxDiscountAmount = int64Ptr(5000)

	member := base("Welcome coupon", policydomain.GroupMember, policydomain.TypeFixedPrice, 100)
	member.FixedAmount = int64Ptr(3000)
	member.MinOrderAmount = int64Ptr(30000)
	member.MaxUsagePerCustomer = int64Ptr(1)
	member.PlatformCostShareRatio = decimal.NewFromInt(50)
	member.SellerCostShareRatio = decimal.NewFromInt(50)

	paymentTierID := node.Generate()
	payment := base("Card bulk tier", policydomain.GroupPayment, policydomain.TypeTieredRate, 100)
	payment.MaxTotalUsage = int64Ptr(1000)
	payment.Tiers = []policydomain.Tier{
		{ID: paymentTierID, PolicyID: payment.ID, Basis: policydomain.TierBasisAmount, Threshold: 100000, Rate: decimalPtr("2")},
		{ID: node.Generate(), PolicyID: payment.ID, Basis: policydomain.TierBasisAmount, Threshold: 300000, Rate: decimalPtr("3.5")},
	}

	return []policydomain.DiscountPolicy{product, member, payment}
}

func int64Ptr(v int64) *int64 { return &v }

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
