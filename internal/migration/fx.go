package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kofiy77/joyjoy-Locums/internal/config"
	"github.com/kofiy77/joyjoy-Locums/internal/seed"
)

// Module runs schema migrations, then seeds defaults when enabled.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}
		log.Info("database migrations applied")

		if !cfg.SeedOnStartup {
			return nil
		}
		if err := seed.EnsureDefaults(context.Background(), conn, node); err != nil {
			return err
		}
		log.Info("default catalog seeded")
		return nil
	}),
)
