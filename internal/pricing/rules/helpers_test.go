package rules

import (
	"time"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func ratePolicy(id snowflake.ID, group policydomain.DiscountGroup, rate int64, priority int) policydomain.DiscountPolicy {
	r := decimal.NewFromInt(rate)
	return policydomain.DiscountPolicy{
		ID:                     id,
		DiscountGroup:          group,
		DiscountType:           policydomain.TypeRate,
		TargetType:             policydomain.TargetAll,
		Rate:                   &r,
		ValidStartAt:           testNow.Add(-time.Hour),
		ValidEndAt:             testNow.Add(time.Hour),
		PlatformCostShareRatio: decimal.NewFromInt(50),
		SellerCostShareRatio:   decimal.NewFromInt(50),
		Priority:               priority,
		Active:                 true,
	}
}

func fixedPolicy(id snowflake.ID, group policydomain.DiscountGroup, amount int64, priority int) policydomain.DiscountPolicy {
	p := ratePolicy(id, group, 0, priority)
	p.DiscountType = policydomain.TypeFixedPrice
	p.Rate = nil
	p.FixedAmount = &amount
	return p
}

func int64Ptr(v int64) *int64 { return &v }

func idPtr(v snowflake.ID) *snowflake.ID { return &v }

func snowflakeID(v int64) snowflake.ID { return snowflake.ID(v) }

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
