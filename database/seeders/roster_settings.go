package seeders

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

// SeedRosterSettings ensures every known roster has a settings row, with both
// discount toggles off. Existing rows are left untouched: toggle state is
// operator-owned and must survive re-seeding.
func SeedRosterSettings(db *gorm.DB) error {
	var errorOccurred bool

	configslog.SLog.Info("Seeding roster settings...")
	for _, roster := range models.RosterKeys() {
		var existing models.RosterSettings
		result := db.Where("roster = ?", roster).First(&existing)
		if result.Error == nil {
			configslog.SLog.Debugf("Roster settings for %q already exist, skipping.", roster)
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Failed to check roster settings",
				zap.String("roster", roster), zap.Error(result.Error))
			errorOccurred = true
			continue
		}

		settings := models.RosterSettings{Roster: roster}
		if err := db.Create(&settings).Error; err != nil {
			configslog.Log.Error("Failed to seed roster settings",
				zap.String("roster", roster), zap.Error(err))
			errorOccurred = true
			continue
		}
		configslog.SLog.Infof("Roster settings created for %q (ID: %s)", roster, settings.ID)
	}

	if errorOccurred {
		return errors.New("at least one roster settings row could not be seeded")
	}
	configslog.SLog.Info("Roster settings seeded successfully.")
	return nil
}
