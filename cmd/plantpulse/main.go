package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/plantpulse/plantpulse/internal/clock"
	"github.com/plantpulse/plantpulse/internal/config"
	"github.com/plantpulse/plantpulse/internal/logger"
	"github.com/plantpulse/plantpulse/internal/migration"
	"github.com/plantpulse/plantpulse/internal/observability"
	"github.com/plantpulse/plantpulse/internal/server"
	"github.com/plantpulse/plantpulse/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
