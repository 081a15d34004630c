package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/clock"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/config"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/discountpolicy"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/discountusage"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/logger"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/migration"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/observability"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/pricing"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/seed"
	"github.com/ryu-qqq/setof-commerce-sub024/internal/server"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/db"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/redisclient"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redisclient.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// Functional Domains
		discountpolicy.Module,
		discountusage.Module,
		pricing.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
