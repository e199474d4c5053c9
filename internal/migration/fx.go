package migration

import (
	"github.com/trash2cash/platform/internal/config"
	"github.com/trash2cash/platform/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Embedded migrations target postgres. Other dialects (sqlite in
		// tests) build their schema with AutoMigrate instead.
		if cfg.DBType != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if err := seed.EnsureReferenceData(conn); err != nil {
			return err
		}
		if cfg.Environment != "production" {
			return seed.EnsureStaffAdmin(conn)
		}
		return nil
	}),
)
