package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/kofiy77/joyjoy-Locums/internal/clock"
	"github.com/kofiy77/joyjoy-Locums/internal/config"
	"github.com/kofiy77/joyjoy-Locums/internal/logger"
	"github.com/kofiy77/joyjoy-Locums/internal/migration"
	"github.com/kofiy77/joyjoy-Locums/internal/server"
	"github.com/kofiy77/joyjoy-Locums/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake provides the node used for all generated identifiers.
func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
