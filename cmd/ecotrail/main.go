package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/config"
	"github.com/ecotrail/ecotrail/internal/migration"
	"github.com/ecotrail/ecotrail/internal/observability"
	"github.com/ecotrail/ecotrail/internal/scheduler"
	"github.com/ecotrail/ecotrail/internal/server"
	"github.com/ecotrail/ecotrail/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
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
