package migration

import (
	"context"

	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.RunMigrations {
			return nil
		}

		switch cfg.DBType {
		case "postgres":
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		case "sqlite":
			return Apply(context.Background(), conn)
		default:
			log.Warn("skipping migrations for unsupported database type", zap.String("db_type", cfg.DBType))
			return nil
		}
	}),
)
