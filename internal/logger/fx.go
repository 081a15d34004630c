package logger

import (
	"context"

	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("logger",
	fx.Provide(FromConfig),
	fx.Invoke(flushOnStop),
)

// FromConfig tags every entry with the service name, version and environment.
func FromConfig(cfg config.Config) (*zap.Logger, error) {
	log, err := New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, err
	}
	return log.With(
		zap.String("service", cfg.AppName),
		zap.String("version", cfg.AppVersion),
		zap.String("env", cfg.Environment),
	), nil
}

func flushOnStop(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync fails on stdout/stderr for some platforms; nothing to act on.
			_ = log.Sync()
			return nil
		},
	})
}
