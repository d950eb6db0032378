package bootstrap

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/config"
	"github.com/mkamel7/academy-server-go/pkg/database/migrations"
)

// ApplyDatabaseMigrations runs registered data migrations when enabled via
// configuration. Schema migration happens during connect; this covers the
// data fixups that AutoMigrate cannot express.
func ApplyDatabaseMigrations(db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.RunMigrations {
		logger.Info("database migrations skipped", slog.String("env_var", "ACADEMY_DB_RUN_MIGRATIONS=false"))
		return nil
	}

	if err := migrations.Run(db, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("database migrations applied successfully")
	return nil
}
