package migration

import (
	"github.com/smallbiznis/rebill/internal/config"
	"github.com/smallbiznis/rebill/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrator only speaks postgres; other dialects
		// (sqlite in tests) create their own schema.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.DemoTenant && !cfg.IsProduction() {
			return seed.EnsureDemoTenant(conn)
		}
		return nil
	}),
)
