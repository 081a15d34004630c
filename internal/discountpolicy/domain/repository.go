package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CatalogQuery describes the order line a policy snapshot is requested for.
type CatalogQuery struct {
	SellerID   snowflake.ID
	CategoryID snowflake.ID
	BrandID    snowflake.ID
	ProductID  snowflake.ID
	AsOf       time.Time
}

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

// Catalog supplies candidate policies for an order line. Implementations
// return non-deleted policies and may include inactive or out-of-window
// entries; callers re-check both.
type Catalog interface {
	LoadEligible(ctx context.Context, q CatalogQuery) ([]DiscountPolicy, error)
}
