package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesledger/internal/clock"
	"github.com/smallbiznis/salesledger/internal/config"
	"github.com/smallbiznis/salesledger/internal/migration"
	"github.com/smallbiznis/salesledger/internal/observability"
	"github.com/smallbiznis/salesledger/internal/server"
	"github.com/smallbiznis/salesledger/pkg/db"
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
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
