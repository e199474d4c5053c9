package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/migration"
	"github.com/trash2cash/platform/internal/observability"
	"github.com/trash2cash/platform/internal/scheduler"
	"github.com/trash2cash/platform/internal/server"
	"github.com/trash2cash/platform/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
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
