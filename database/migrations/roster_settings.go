package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

// MigrateRosterSettingsTable creates/updates the per-roster settings table
// holding the persisted discount toggles.
func MigrateRosterSettingsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating roster_settings table...")
	if err := db.AutoMigrate(&models.RosterSettings{}); err != nil {
		configslog.Log.Error("Failed to migrate roster_settings table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Roster_settings table migrated successfully")
	return nil
}
