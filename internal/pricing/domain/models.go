package domain

import (
	"github.com/bwmarrin/snowflake"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
)

// OrderLine is one product line of an order as seen by the engine. Amounts
// are in minor currency units.
type OrderLine struct {
	ProductID  snowflake.ID `json:"product_id"`
	CategoryID snowflake.ID `json:"category_id"`
	SellerID   snowflake.ID `json:"seller_id"`
	BrandID    snowflake.ID `json:"brand_id"`
	LineAmount int64        `json:"line_amount"`
	Quantity   int64        `json:"quantity"`
}

type AppliedDiscount struct {
	PolicyID       snowflake.ID               `json:"policy_id"`
	DiscountGroup  policydomain.DiscountGroup `json:"discount_group"`
	DiscountAmount int64                      `json:"discount_amount"`
	PlatformShare  int64                      `json:"platform_share"`
	SellerShare    int64                      `json:"seller_share"`
	Priority       int                        `json:"priority"`
}

// Rejection reports a group winner removed by a usage ceiling.
type Rejection struct {
	PolicyID      snowflake.ID               `json:"policy_id"`
	DiscountGroup policydomain.DiscountGroup `json:"discount_group"`
	Reason        usagedomain.RejectReason   `json:"reason"`
}

type PricingResult struct {
	LineAmount    int64             `json:"line_amount"`
	Discounts     []AppliedDiscount `json:"discounts"`
	TotalDiscount int64             `json:"total_discount"`
	FinalAmount   int64             `json:"final_amount"`
	Rejections    []Rejection       `json:"rejections,omitempty"`
}
