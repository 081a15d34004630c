package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DiscountGroup partitions policies into independent stacking slots.
type DiscountGroup string

const (
	GroupProduct DiscountGroup = "PRODUCT"
	GroupMember  DiscountGroup = "MEMBER"
	GroupPayment DiscountGroup = "PAYMENT"
)

// DiscountGroups lists every group in application order.
var DiscountGroups = []DiscountGroup{GroupProduct, GroupMember, GroupPayment}

func (g DiscountGroup) Valid() bool {
	switch g {
	case GroupProduct, GroupMember, GroupPayment:
		return true
	default:
		return false
	}
}

type DiscountType string

const (
	TypeRate        DiscountType = "RATE"
	TypeFixedPrice  DiscountType = "FIXED_PRICE"
	TypeTieredRate  DiscountType = "TIERED_RATE"
	TypeTieredPrice DiscountType = "TIERED_PRICE"
)

func (t DiscountType) Valid() bool {
	switch t {
	case TypeRate, TypeFixedPrice, TypeTieredRate, TypeTieredPrice:
		return true
	default:
		return false
	}
}

// Tiered reports whether the amount comes from a tier table.
func (t DiscountType) Tiered() bool {
	return t == TypeTieredRate || t == TypeTieredPrice
}

type TargetType string

const (
	TargetAll      TargetType = "ALL"
	TargetProduct  TargetType = "PRODUCT"
	TargetCategory TargetType = "CATEGORY"
	TargetSeller   TargetType = "SELLER"
	TargetBrand    TargetType = "BRAND"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetAll, TargetProduct, TargetCategory, TargetSeller, TargetBrand:
		return true
	default:
		return false
	}
}

// TierBasis selects which order line measure a tier threshold compares against.
type TierBasis string

const (
	TierBasisQuantity TierBasis = "QUANTITY"
	TierBasisAmount   TierBasis = "AMOUNT"
)

// Tier is one step of a tiered policy. Rate is used by TIERED_RATE and
// FixedAmount by TIERED_PRICE.
type Tier struct {
	ID          snowflake.ID     `json:"id" gorm:"primaryKey"`
	PolicyID    snowflake.ID     `json:"policy_id" gorm:"column:policy_id;not null;index"`
	Basis       TierBasis        `json:"basis" gorm:"type:text;not null"`
	Threshold   int64            `json:"threshold" gorm:"not null"`
	Rate        *decimal.Decimal `json:"rate,omitempty" gorm:"type:numeric"`
	FixedAmount *int64           `json:"fixed_amount,omitempty"`
}

func (Tier) TableName() string { return "discount_policy_tiers" }

type DiscountPolicy struct {
	ID                     snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name                   string            `json:"name" gorm:"type:text;not null"`
	SellerID               *snowflake.ID     `json:"seller_id,omitempty" gorm:"column:seller_id;index"`
	DiscountGroup          DiscountGroup     `json:"discount_group" gorm:"type:text;not null"`
	DiscountType           DiscountType      `json:"discount_type" gorm:"type:text;not null"`
	TargetType             TargetType        `json:"target_type" gorm:"type:text;not null"`
	TargetID               *snowflake.ID     `json:"target_id,omitempty" gorm:"column:target_id"`
	Rate                   *decimal.Decimal  `json:"rate,omitempty" gorm:"type:numeric"`
	FixedAmount            *int64            `json:"fixed_amount,omitempty"`
	MaxDiscountAmount      *int64            `json:"max_discount_amount,omitempty"`
	MinOrderAmount         *int64            `json:"min_order_amount,omitempty"`
	ValidStartAt           time.Time         `json:"valid_start_at" gorm:"not null"`
	ValidEndAt             time.Time         `json:"valid_end_at" gorm:"not null"`
	MaxUsagePerCustomer    *int64            `json:"max_usage_per_customer,omitempty"`
	MaxTotalUsage          *int64            `json:"max_total_usage,omitempty"`
	PlatformCostShareRatio decimal.Decimal   `json:"platform_cost_share_ratio" gorm:"type:numeric;not null"`
	SellerCostShareRatio   decimal.Decimal   `json:"seller_cost_share_ratio" gorm:"type:numeric;not null"`
	Priority               int               `json:"priority" gorm:"not null"`
	Active                 bool              `json:"active" gorm:"not null"`
	Deleted                bool              `json:"deleted" gorm:"not null"`
	Metadata               datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	Tiers                  []Tier            `json:"tiers,omitempty" gorm:"-"`
	CreatedAt              time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DiscountPolicy) TableName() string { return "discount_policies" }

// ActiveAt reports whether the policy is switched on and its [start, end)
// window contains at.
func (p DiscountPolicy) ActiveAt(at time.Time) bool {
	if !p.Active || p.Deleted {
		return false
	}
	return !at.Before(p.ValidStartAt) && at.Before(p.ValidEndAt)
}

// HasUsageLimit reports whether applying the policy must go through the usage counter.
func (p DiscountPolicy) HasUsageLimit() bool {
	return p.MaxUsagePerCustomer != nil || p.MaxTotalUsage != nil
}
