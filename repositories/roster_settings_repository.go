package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configsdatabase"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

// IRosterSettingsRepository stores the per-roster discount toggles.
type IRosterSettingsRepository interface {
	// Get returns the settings row for a roster, creating it with both
	// toggles off if it does not exist yet.
	Get(ctx context.Context, roster string) (*models.RosterSettings, error)
	Save(ctx context.Context, settings *models.RosterSettings) error
}

// RosterSettingsRepository implements IRosterSettingsRepository on gorm.
type RosterSettingsRepository struct {
	db *gorm.DB
}

// NewRosterSettingsRepository builds a repository on the shared connection.
func NewRosterSettingsRepository() IRosterSettingsRepository {
	return &RosterSettingsRepository{db: configsdatabase.GetDB()}
}

// NewRosterSettingsRepositoryTx builds a repository bound to an open transaction.
func NewRosterSettingsRepositoryTx(tx *gorm.DB) IRosterSettingsRepository {
	return &RosterSettingsRepository{db: tx}
}

func (r *RosterSettingsRepository) Get(ctx context.Context, roster string) (*models.RosterSettings, error) {
	if roster == "" {
		return nil, errors.New("roster key required")
	}
	var settings models.RosterSettings
	err := r.db.WithContext(ctx).
		Where(models.RosterSettings{Roster: roster}).
		FirstOrCreate(&settings).Error
	if err != nil {
		configslog.Log.Error("RosterSettingsRepository.Get: DB error", zap.String("roster", roster), zap.Error(err))
		return nil, err
	}
	return &settings, nil
}

func (r *RosterSettingsRepository) Save(ctx context.Context, settings *models.RosterSettings) error {
	if settings == nil || settings.ID == "" {
		return errors.New("settings save requires an id")
	}
	return r.db.WithContext(ctx).Save(settings).Error
}

var _ IRosterSettingsRepository = (*RosterSettingsRepository)(nil)
