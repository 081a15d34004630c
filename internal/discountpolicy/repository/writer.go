package repository

import (
	"context"

	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"gorm.io/gorm"
)

// Insert stores a policy together with its tiers in one transaction. It is
// used by seeding and tests; policy management lives outside this service.
func Insert(ctx context.Context, db *gorm.DB, policy *policydomain.DiscountPolicy) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO discount_policies (`+policyColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			policy.ID,
			policy.Name,
			policy.SellerID,
			policy.DiscountGroup,
			policy.DiscountType,
			policy.TargetType,
			policy.TargetID,
			policy.Rate,
			policy.FixedAmount,
			policy.MaxDiscountAmount,
			policy.MinOrderAmount,
			policy.ValidStartAt,
			policy.ValidEndAt,
			policy.MaxUsagePerCustomer,
			policy.MaxTotalUsage,
			policy.PlatformCostShareRatio,
			policy.SellerCostShareRatio,
			policy.Priority,
			policy.Active,
			policy.Deleted,
			policy.Metadata,
			policy.CreatedAt,
			policy.UpdatedAt,
		).Error
		if err != nil {
			return err
		}

		for _, tier := range policy.Tiers {
			err := tx.Exec(
				`INSERT INTO discount_policy_tiers (id, policy_id, basis, threshold, rate, fixed_amount)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				tier.ID,
				policy.ID,
				tier.Basis,
				tier.Threshold,
				tier.Rate,
				tier.FixedAmount,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
