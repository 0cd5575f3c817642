package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

// MigrateParticipantsTable creates/updates the shared participants table used
// by the three rosters.
func MigrateParticipantsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating participants table...")
	if err := db.AutoMigrate(&models.Participant{}); err != nil {
		configslog.Log.Error("Failed to migrate participants table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Participants table migrated successfully")
	return nil
}
