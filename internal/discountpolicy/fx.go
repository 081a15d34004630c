package discountpolicy

import (
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	policydomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/domain"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("discountpolicy.repository",
	fx.Provide(provideCatalog),
)

func provideCatalog(cfg config.Config, db *gorm.DB, log *zap.Logger) policydomain.Catalog {
	ttl := cfg.Pricing.CatalogCacheTTL
	if ttl > 0 {
		log.Named("discountpolicy").Info("policy catalog cache enabled", zap.Duration("ttl", ttl))
	}
	return repository.NewCachedCatalog(repository.NewCatalog(db), ttl)
}
