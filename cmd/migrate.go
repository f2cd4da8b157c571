package cmd

import (
	"database/sql"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-order-payments/app/migrations"
	"github.com/vibast-solutions/ms-go-order-payments/config"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the MySQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("up", migrations.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the given number of migrations",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration("down", func(db *sql.DB) error { return migrations.Down(db, downSteps) })
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")
}

func runMigration(direction string, fn func(db *sql.DB) error) {
	cfg := mustLoadConfig()
	if cfg.Store.Driver != config.StoreDriverMySQL {
		logrus.WithField("driver", cfg.Store.Driver).Fatal("Migrations require STORE_DRIVER=mysql")
	}

	db := mustOpenDatabase(cfg)
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}()

	logger := logrus.WithField("direction", direction)
	if err := fn(db); err != nil {
		logger.WithError(err).Fatal("Migration failed")
	}

	version, dirty, err := migrations.Version(db)
	if err != nil {
		logger.WithError(err).Warn("Failed to read schema version")
		return
	}
	logger.WithField("version", version).WithField("dirty", dirty).Info("Migration completed")
}
