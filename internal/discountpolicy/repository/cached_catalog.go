package repository

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
)

type cachedCatalog struct {
	next  policydomain.Catalog
	cache *gocache.Cache
}

// NewCachedCatalog wraps next with a read-through cache holding one snapshot
// per query and minute. A non-positive ttl disables caching.
func NewCachedCatalog(next policydomain.Catalog, ttl time.Duration) policydomain.Catalog {
	if ttl <= 0 {
		return next
	}
	return &cachedCatalog{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *cachedCatalog) LoadEligible(ctx context.Context, q policydomain.CatalogQuery) ([]policydomain.DiscountPolicy, error) {
	key := cacheKey(q)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]policydomain.DiscountPolicy), nil
	}

	items, err := c.next.LoadEligible(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, items)
	return items, nil
}

func cacheKey(q policydomain.CatalogQuery) string {
	return fmt.Sprintf("seller:%d:category:%d:brand:%d:product:%d:at:%d",
		q.SellerID,
		q.CategoryID,
		q.BrandID,
		q.ProductID,
		q.AsOf.UTC().Truncate(time.Minute).Unix(),
	)
}
