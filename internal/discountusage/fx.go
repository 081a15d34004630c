package discountusage

import (
	"errors"

	redis "github.com/redis/go-redis/v9"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/clock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	usagedomain "github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/domain"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/redisstore"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage/repository"
	obsmetrics "github.com/ryu-qqq/setof-commerce-sub024/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("discountusage.service",
	fx.Provide(provideCounter),
)

type counterParams struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Redis redis.UniversalClient `optional:"true"`
	Clock   clock.Clock
	Tuning  *config.PricingTuningHolder
	Metrics *obsmetrics.UsageMetrics `optional:"true"`
}

func provideCounter(p counterParams) (usagedomain.Counter, error) {
	switch p.Config.Pricing.UsageBackend {
	case config.UsageBackendRedis:
		if p.Redis == nil {
			return nil, errors.New("REDIS_ADDR is required for the redis usage backend")
		}
		p.Log.Info("usage counter backend selected", zap.String("backend", config.UsageBackendRedis))
		return Instrument(redisstore.NewCounter(p.Redis), config.UsageBackendRedis, p.Metrics), nil
	default:
		p.Log.Info("usage counter backend selected", zap.String("backend", config.UsageBackendSQL))
		return Instrument(repository.NewCounter(repository.Params{
			DB:     p.DB,
			Log:    p.Log,
			Clock:  p.Clock,
			Tuning: p.Tuning,
		}), config.UsageBackendSQL, p.Metrics), nil
	}
}
