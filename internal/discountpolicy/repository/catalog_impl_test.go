package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var catalogNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func TestLoadEligibleFiltersTargetsAndSellers(t *testing.T) {
	db := setupCatalogDB(t)
	ctx := context.Background()

	seed := []policydomain.DiscountPolicy{
		newPolicy(1, policydomain.TargetAll, nil, nil, 30),
		newPolicy(2, policydomain.TargetProduct, idPtr(500), nil, 20),
		newPolicy(3, policydomain.TargetProduct, idPtr(501), nil, 10),
		newPolicy(4, policydomain.TargetCategory, idPtr(600), nil, 10),
		newPolicy(5, policydomain.TargetBrand, idPtr(700), idPtr(900), 10),
		newPolicy(6, policydomain.TargetAll, nil, idPtr(901), 10),
		newPolicy(7, policydomain.TargetSeller, idPtr(900), nil, 5),
	}
	deleted := newPolicy(8, policydomain.TargetAll, nil, nil, 1)
	deleted.Deleted = true
	seed = append(seed, deleted)

	for i := range seed {
		require.NoError(t, Insert(ctx, db, &seed[i]))
	}

	items, err := NewCatalog(db).LoadEligible(ctx, policydomain.CatalogQuery{
		SellerID:   900,
		CategoryID: 600,
		BrandID:    700,
		ProductID:  500,
		AsOf:       catalogNow,
	})
	require.NoError(t, err)

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, int64(item.ID))
	}
	// ordered by priority then id; seller 901 and deleted rows excluded
	assert.Equal(t, []int64{7, 4, 5, 2, 1}, ids)
}

func TestLoadEligibleAttachesTiers(t *testing.T) {
	db := setupCatalogDB(t)
	ctx := context.Background()

	tiered := newPolicy(10, policydomain.TargetAll, nil, nil, 10)
	tiered.DiscountType = policydomain.TypeTieredPrice
	tiered.Rate = nil
	tiered.Tiers = []policydomain.Tier{
		{ID: 2, Basis: policydomain.TierBasisAmount, Threshold: 50000, FixedAmount: int64Ptr(5000)},
		{ID: 1, Basis: policydomain.TierBasisAmount, Threshold: 20000, FixedAmount: int64Ptr(1000)},
	}
	require.NoError(t, Insert(ctx, db, &tiered))
	require.NoError(t, Insert(ctx, db, ptr(newPolicy(11, policydomain.TargetAll, nil, nil, 20))))

	items, err := NewCatalog(db).LoadEligible(ctx, policydomain.CatalogQuery{SellerID: 1, AsOf: catalogNow})
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Len(t, items[0].Tiers, 2)
	assert.Equal(t, int64(20000), items[0].Tiers[0].Threshold)
	assert.Equal(t, int64(50000), items[0].Tiers[1].Threshold)
	assert.Equal(t, int64(5000), *items[0].Tiers[1].FixedAmount)
	assert.Empty(t, items[1].Tiers)
	require.NotNil(t, items[1].Rate)
	assert.True(t, items[1].Rate.Equal(decimal.NewFromInt(10)))
}

func TestLoadEligibleEmpty(t *testing.T) {
	db := setupCatalogDB(t)

	items, err := NewCatalog(db).LoadEligible(context.Background(), policydomain.CatalogQuery{SellerID: 1, AsOf: catalogNow})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := migration.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func newPolicy(id snowflake.ID, target policydomain.TargetType, targetID, sellerID *snowflake.ID, priority int) policydomain.DiscountPolicy {
	rate := decimal.NewFromInt(10)
	return policydomain.DiscountPolicy{
		ID:                     id,
		Name:                   fmt.Sprintf("policy-%d", id),
		SellerID:               sellerID,
		DiscountGroup:          policydomain.GroupProduct,
		DiscountType:           policydomain.TypeRate,
		TargetType:             target,
		TargetID:               targetID,
		Rate:                   &rate,
		ValidStartAt:           catalogNow.Add(-time.Hour),
		ValidEndAt:             catalogNow.Add(time.Hour),
		PlatformCostShareRatio: decimal.NewFromInt(100),
		SellerCostShareRatio:   decimal.Zero,
		Priority:               priority,
		Active:                 true,
		CreatedAt:              catalogNow,
		UpdatedAt:              catalogNow,
	}
}

func idPtr(v snowflake.ID) *snowflake.ID { return &v }

func int64Ptr(v int64) *int64 { return &v }

func ptr[T any](v T) *T { return &v }
