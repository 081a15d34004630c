package pricing

import (
	"github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(service.New),
)
