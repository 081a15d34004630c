package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"gorm.io/gorm"
)

const policyColumns = `id, name, seller_id, discount_group, discount_type, target_type, target_id,
	rate, fixed_amount, max_discount_amount, min_order_amount, valid_start_at, valid_end_at,
	max_usage_per_customer, max_total_usage, platform_cost_share_ratio, seller_cost_share_ratio,
	priority, active, deleted, metadata, created_at, updated_at`

type catalog struct {
	db *gorm.DB
}

// NewCatalog returns a Catalog reading policies and tiers through db.
func NewCatalog(db *gorm.DB) policydomain.Catalog {
	return &catalog{db: db}
}

func (c *catalog) LoadEligible(ctx context.Context, q policydomain.CatalogQuery) ([]policydomain.DiscountPolicy, error) {
	var items []policydomain.DiscountPolicy
	err := c.db.WithContext(ctx).Raw(
		`SELECT `+policyColumns+`
		 FROM discount_policies
		 WHERE deleted = ?
		   AND (seller_id IS NULL OR seller_id = ?)
		   AND (
		     target_type = ?
		     OR (target_type = ? AND target_id = ?)
		     OR (target_type = ? AND target_id = ?)
		     OR (target_type = ? AND target_id = ?)
		     OR (target_type = ? AND target_id = ?)
		   )
		 ORDER BY priority ASC, id ASC`,
		false,
		q.SellerID,
		policydomain.TargetAll,
		policydomain.TargetProduct, q.ProductID,
		policydomain.TargetCategory, q.CategoryID,
		policydomain.TargetSeller, q.SellerID,
		policydomain.TargetBrand, q.BrandID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	if err := c.attachTiers(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *catalog) attachTiers(ctx context.Context, items []policydomain.DiscountPolicy) error {
	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		if item.DiscountType.Tiered() {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var tiers []policydomain.Tier
	err := c.db.WithContext(ctx).Raw(
		`SELECT id, policy_id, basis, threshold, rate, fixed_amount
		 FROM discount_policy_tiers
		 WHERE policy_id IN ?
		 ORDER BY policy_id ASC, threshold ASC`,
		ids,
	).Scan(&tiers).Error
	if err != nil {
		return err
	}

	byPolicy := make(map[snowflake.ID][]policydomain.Tier, len(ids))
	for _, tier := range tiers {
		byPolicy[tier.PolicyID] = append(byPolicy[tier.PolicyID], tier)
	}
	for i := range items {
		items[i].Tiers = byPolicy[items[i].ID]
	}
	return nil
}
