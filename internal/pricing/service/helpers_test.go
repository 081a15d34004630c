package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/clock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	policymocks "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/mocks"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	usagemocks "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/mocks"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var evalTime = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc     pricingdomain.Service
	catalog *policymocks.MockCatalog
	counter *usagemocks.MockCounter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	catalog := policymocks.NewMockCatalog(ctrl)
	counter := usagemocks.NewMockCounter(ctrl)

	svc := New(Params{
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(evalTime),
		Catalog: catalog,
		Counter: counter,
		Tuning:  config.NewStaticPricingTuning(config.PricingTuning{ReserveMaxAttempts: 3, EvaluateTimeout: time.Second}),
	})
	return fixture{svc: svc, catalog: catalog, counter: counter}
}

func rate(id snowflake.ID, group policydomain.DiscountGroup, pct int64, priority int) policydomain.DiscountPolicy {
	r := decimal.NewFromInt(pct)
	return policydomain.DiscountPolicy{
		ID:                     id,
		Name:                   "rate",
		DiscountGroup:          group,
		DiscountType:           policydomain.TypeRate,
		TargetType:             policydomain.TargetAll,
		Rate:                   &r,
		ValidStartAt:           evalTime.Add(-24 * time.Hour),
		ValidEndAt:             evalTime.Add(24 * time.Hour),
		PlatformCostShareRatio: decimal.NewFromInt(70),
		SellerCostShareRatio:   decimal.NewFromInt(30),
		Priority:               priority,
		Active:                 true,
	}
}

func fixed(id snowflake.ID, group policydomain.DiscountGroup, amount int64, priority int) policydomain.DiscountPolicy {
	p := rate(id, group, 0, priority)
	p.Name = "fixed"
	p.DiscountType = policydomain.TypeFixedPrice
	p.Rate = nil
	p.FixedAmount = &amount
	return p
}

func limit(v int64) *int64 { return &v }

func line(amount int64) pricingdomain.OrderLine {
	return pricingdomain.OrderLine{
		ProductID:  101,
		CategoryID: 202,
		SellerID:   303,
		BrandID:    404,
		LineAmount: amount,
		Quantity:   1,
	}
}

func reservationFor(policy policydomain.DiscountPolicy, memberID snowflake.ID) usagedomain.Reservation {
	return usagedomain.Reservation{
		PolicyID:       policy.ID,
		MemberID:       memberID,
		MaxPerCustomer: policy.MaxUsagePerCustomer,
		MaxTotal:       policy.MaxTotalUsage,
	}
}

func ptrID(v snowflake.ID) *snowflake.ID { return &v }

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
