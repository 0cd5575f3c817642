package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configsdatabase"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/repositories"
)

// Statistics is the read-only roster aggregation. Restricted is nil unless
// the caller asked for (and is entitled to) the privileged view.
type Statistics struct {
	Roster     string                `json:"roster"`
	Total      int64                 `json:"total"`
	Attended   int64                 `json:"attended"`
	Restricted *RestrictedStatistics `json:"restricted,omitempty"`
}

// RestrictedStatistics are the counts shown to privileged views only.
type RestrictedStatistics struct {
	Students    int64 `json:"students"`
	Ladies      int64 `json:"ladies"`
	CouponTotal int64 `json:"couponTotal"`
	// FreeEntry counts participants currently holding at least one active
	// discount credit.
	FreeEntry int64 `json:"freeEntry"`
}

// IStatsService projects aggregate counts from the roster and ledger state.
// Pure reads, no side effects.
type IStatsService interface {
	Stats(ctx context.Context, roster string, privileged bool) (*Statistics, error)
}

// StatsService implements IStatsService on the gorm-backed store.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService builds a projector on the shared database connection.
func NewStatsService() IStatsService {
	return NewStatsServiceWith(configsdatabase.GetDB())
}

// NewStatsServiceWith builds a projector with an explicit connection (tests).
func NewStatsServiceWith(db *gorm.DB) IStatsService {
	return &StatsService{db: db}
}

func (s *StatsService) Stats(ctx context.Context, roster string, privileged bool) (*Statistics, error) {
	cfg, ok := models.RosterByKey(roster)
	if !ok {
		return nil, ErrUnknownRoster
	}

	repo := repositories.NewParticipantRepositoryTx(s.db)

	total, err := repo.CountByRoster(ctx, roster)
	if err != nil {
		return nil, err
	}
	attended, err := repo.CountAttended(ctx, roster)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Roster: roster, Total: total, Attended: attended}
	if !privileged {
		return stats, nil
	}

	restricted := &RestrictedStatistics{}
	if restricted.Students, err = repo.CountStudents(ctx, roster); err != nil {
		return nil, err
	}
	if cfg.HasLadyFlag {
		if restricted.Ladies, err = repo.CountLadies(ctx, roster); err != nil {
			return nil, err
		}
	}
	if cfg.HasCoupons {
		if restricted.CouponTotal, err = repo.SumDrinksCoupons(ctx, roster); err != nil {
			return nil, err
		}
		settings, err := repositories.NewRosterSettingsRepositoryTx(s.db).Get(ctx, roster)
		if err != nil {
			return nil, err
		}
		restricted.FreeEntry, err = repo.CountFreeEntry(ctx, roster, settings.StudentDiscountActive, settings.LadyDiscountActive)
		if err != nil {
			return nil, err
		}
	}
	stats.Restricted = restricted
	return stats, nil
}

var _ IStatsService = (*StatsService)(nil)
