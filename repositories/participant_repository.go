package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configsdatabase"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/pkg/queryparams"
)

// IParticipantRepository is the participant store: keyed access by id and by
// (roster, name), enumeration, and the derived-counter adjustments the ledger
// applies incrementally.
type IParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, roster, id string) (*models.Participant, error)
	FindByName(ctx context.Context, roster, name string) (*models.Participant, error)
	FindAll(ctx context.Context, roster string) ([]models.Participant, error)
	FindAllPaginated(ctx context.Context, roster string, params queryparams.ListParams) ([]models.Participant, int64, error)
	Update(ctx context.Context, p *models.Participant) error
	Delete(ctx context.Context, p *models.Participant) error

	// AdjustMembersInvited / AdjustDrinksCoupon apply a delta to a derived
	// counter, clamped at zero in SQL so no interleaving can drive it negative.
	AdjustMembersInvited(ctx context.Context, id string, delta int) error
	AdjustDrinksCoupon(ctx context.Context, id string, delta int) error

	// FindNamesByIDs resolves participant ids to their current names. Ids with
	// no matching row (dangling references) are simply absent from the map.
	FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)

	CountByRoster(ctx context.Context, roster string) (int64, error)
	CountAttended(ctx context.Context, roster string) (int64, error)
	CountStudents(ctx context.Context, roster string) (int64, error)
	CountLadies(ctx context.Context, roster string) (int64, error)
	SumDrinksCoupons(ctx context.Context, roster string) (int64, error)
	// CountFreeEntry counts participants holding at least one active discount
	// credit under the given toggle state.
	CountFreeEntry(ctx context.Context, roster string, studentActive, ladyActive bool) (int64, error)
}

// ParticipantRepository implements IParticipantRepository on gorm.
type ParticipantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository builds a repository on the shared connection.
func NewParticipantRepository() IParticipantRepository {
	return &ParticipantRepository{db: configsdatabase.GetDB()}
}

// NewParticipantRepositoryTx builds a repository bound to an open transaction.
func NewParticipantRepositoryTx(tx *gorm.DB) IParticipantRepository {
	return &ParticipantRepository{db: tx}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	if p == nil || p.Roster == "" || p.Name == "" {
		return errors.New("participant requires a roster and a name")
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ParticipantRepository) FindByID(ctx context.Context, roster, id string) (*models.Participant, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var p models.Participant
	err := r.db.WithContext(ctx).Where("roster = ? AND id = ?", roster, id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindByID: DB error", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) FindByName(ctx context.Context, roster, name string) (*models.Participant, error) {
	if name == "" {
		return nil, ErrNotFound
	}
	var p models.Participant
	err := r.db.WithContext(ctx).Where("roster = ? AND name = ?", roster, name).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("ParticipantRepository.FindByName: DB error", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) FindAll(ctx context.Context, roster string) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.WithContext(ctx).Where("roster = ?", roster).Order("created_at asc").Find(&list).Error
	if err != nil {
		configslog.Log.Error("ParticipantRepository.FindAll: DB error", zap.String("roster", roster), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (r *ParticipantRepository) FindAllPaginated(ctx context.Context, roster string, params queryparams.ListParams) ([]models.Participant, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Participant{}).Where("roster = ?", roster)
	if params.Name != "" {
		query = query.Where("name LIKE ?", "%"+params.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		configslog.Log.Error("ParticipantRepository.FindAllPaginated: count error", zap.String("roster", roster), zap.Error(err))
		return nil, 0, err
	}

	sortBy := params.SortBy
	switch sortBy {
	case "name", "created_at", "attended", "members_invited":
		// allowed sort columns
	default:
		sortBy = "created_at"
	}
	order := sortBy + " " + params.OrderDirection()

	var list []models.Participant
	err := query.Order(order).Offset(params.Offset()).Limit(params.PerPage).Find(&list).Error
	if err != nil {
		configslog.Log.Error("ParticipantRepository.FindAllPaginated: find error", zap.String("roster", roster), zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	if p == nil || p.ID == "" {
		return errors.New("participant update requires an id")
	}
	// Save persists zero-valued fields too (cleared flags, reset counters).
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ParticipantRepository) Delete(ctx context.Context, p *models.Participant) error {
	if p == nil || p.ID == "" {
		return errors.New("participant delete requires an id")
	}
	result := r.db.WithContext(ctx).Delete(&models.Participant{}, "id = ?", p.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ParticipantRepository) AdjustMembersInvited(ctx context.Context, id string, delta int) error {
	return r.adjustCounter(ctx, id, "members_invited", delta)
}

func (r *ParticipantRepository) AdjustDrinksCoupon(ctx context.Context, id string, delta int) error {
	return r.adjustCounter(ctx, id, "drinks_coupon", delta)
}

func (r *ParticipantRepository) adjustCounter(ctx context.Context, id, column string, delta int) error {
	if delta == 0 {
		return nil
	}
	// CASE keeps the clamp inside the statement; portable across postgres and
	// the sqlite test driver.
	expr := gorm.Expr(
		"CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END",
		delta, delta,
	)
	result := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("id = ?", id).
		UpdateColumn(column, expr)
	if result.Error != nil {
		configslog.Log.Error("ParticipantRepository.adjustCounter: DB error",
			zap.String("id", id), zap.String("column", column), zap.Int("delta", delta), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ParticipantRepository) FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []models.Participant
	err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		configslog.Log.Error("ParticipantRepository.FindNamesByIDs: DB error", zap.Error(err))
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *ParticipantRepository) CountByRoster(ctx context.Context, roster string) (int64, error) {
	return r.count(ctx, roster, "")
}

func (r *ParticipantRepository) CountAttended(ctx context.Context, roster string) (int64, error) {
	return r.count(ctx, roster, "attended = '"+string(models.AttendanceAttended)+"'")
}

func (r *ParticipantRepository) CountStudents(ctx context.Context, roster string) (int64, error) {
	return r.count(ctx, roster, "is_student = true")
}

func (r *ParticipantRepository) CountLadies(ctx context.Context, roster string) (int64, error) {
	return r.count(ctx, roster, "is_lady = true")
}

func (r *ParticipantRepository) count(ctx context.Context, roster, cond string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Participant{}).Where("roster = ?", roster)
	if cond != "" {
		query = query.Where(cond)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		configslog.Log.Error("ParticipantRepository.count: DB error", zap.String("roster", roster), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (r *ParticipantRepository) SumDrinksCoupons(ctx context.Context, roster string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("roster = ?", roster).
		Select("COALESCE(SUM(drinks_coupon), 0)").
		Scan(&sum).Error
	if err != nil {
		configslog.Log.Error("ParticipantRepository.SumDrinksCoupons: DB error", zap.String("roster", roster), zap.Error(err))
		return 0, err
	}
	return sum, nil
}

func (r *ParticipantRepository) CountFreeEntry(ctx context.Context, roster string, studentActive, ladyActive bool) (int64, error) {
	if !studentActive && !ladyActive {
		return 0, nil
	}
	query := r.db.WithContext(ctx).Model(&models.Participant{}).Where("roster = ?", roster)
	switch {
	case studentActive && ladyActive:
		query = query.Where("is_student = true OR is_lady = true")
	case studentActive:
		query = query.Where("is_student = true")
	default:
		query = query.Where("is_lady = true")
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		configslog.Log.Error("ParticipantRepository.CountFreeEntry: DB error", zap.String("roster", roster), zap.Error(err))
		return 0, err
	}
	return n, nil
}

var _ IParticipantRepository = (*ParticipantRepository)(nil)
