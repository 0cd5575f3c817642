package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/database/migrations"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/database/seeders"
)

// Initialize runs migrations and/or seeders inside one transaction.
func Initialize(db *gorm.DB, migrate bool, seed bool) {
	if !migrate && !seed {
		configslog.SLog.Info("Neither migrate nor seed flag given, nothing to do.")
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Fatal("Failed to start database transaction", zap.Error(tx.Error))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Fatal("Database initialization failed (panic)", zap.Any("panic_info", r))
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if migrate {
		configslog.SLog.Info("Running migrations...")
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migration failed", zap.Error(err))
			tx.Rollback()
			return
		}
		configslog.SLog.Info("Migrations finished.")
	}

	if seed {
		configslog.SLog.Info("Running seeders...")
		if err := RunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding failed", zap.Error(err))
			tx.Rollback()
			return
		}
		configslog.SLog.Info("Seeders finished.")
	}

	if err := tx.Commit().Error; err != nil {
		configslog.Log.Error("Commit failed", zap.Error(err))
		return
	}
	configslog.SLog.Info("Database initialization completed successfully")
}

// RunMigrationsInOrder migrates all tables. Participants first: the settings
// seeder assumes the roster keys the participants table is partitioned by.
func RunMigrationsInOrder(db *gorm.DB) error {
	if err := migrations.MigrateParticipantsTable(db); err != nil {
		return err
	}
	if err := migrations.MigrateRosterSettingsTable(db); err != nil {
		return err
	}
	return nil
}

// RunSeeders ensures required baseline rows exist.
func RunSeeders(db *gorm.DB) error {
	return seeders.SeedRosterSettings(db)
}
