package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	policyrepo "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/repository"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureDemoPoliciesIsIdempotent(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Apply(context.Background(), db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seeded, err := EnsureDemoPolicies(ctx, db, node, now)
	require.NoError(t, err)
	assert.Equal(t, 3, seeded)

	seeded, err = EnsureDemoPolicies(ctx, db, node, now)
	require.NoError(t, err)
	assert.Zero(t, seeded)

	items, err := policyrepo.NewCatalog(db).LoadEligible(ctx, policydomain.CatalogQuery{SellerID: 1, AsOf: now})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.NoError(t, policydomain.Validate(item))
	}
}

func TestDemoPoliciesAreValid(t *testing.T) {
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	for _, policy := range demoPolicies(node, time.Now()) {
		assert.NoError(t, policydomain.Validate(policy), policy.Name)
	}
}
