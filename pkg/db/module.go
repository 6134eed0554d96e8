package db

import (
	"time"

	"github.com/kofiy77/joyjoy-Locums/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	log.Info("database connected", zap.String("type", cfg.DBType), zap.String("name", cfg.DBName))
	return gdb, nil
}

// Module provides the gorm database handle.
var Module = fx.Module("db",
	fx.Provide(Open),
)
