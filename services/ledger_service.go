package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configsdatabase"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/pkg/queryparams"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/pkg/rosterlock"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/repositories"
)

// LedgerError is the ledger's client-input error taxonomy. All of these are
// recoverable by the caller with different input; none are fatal to the engine.
type LedgerError string

func (e LedgerError) Error() string { return string(e) }

const (
	ErrUnknownRoster       LedgerError = "unknown roster"
	ErrNameRequired        LedgerError = "participant name is required"
	ErrDuplicateName       LedgerError = "participant name already exists"
	ErrSelfInvitation      LedgerError = "participants cannot invite themselves"
	ErrUnknownInviter      LedgerError = "inviter not found in roster"
	ErrParticipantNotFound LedgerError = "participant not found"
	ErrAlreadyAttended     LedgerError = "participant is already marked attended"
	ErrInvalidInput        LedgerError = "invalid input"
	ErrDiscountUnsupported LedgerError = "roster does not support discounts"
	// ErrRosterBusy is transient: a bounded lock wait expired. The caller may
	// retry; the engine never retries implicitly, so lost-update bugs cannot
	// hide behind silent re-runs.
	ErrRosterBusy LedgerError = "roster is busy, try again"
)

// DefaultLockWait bounds lock acquisition when the service is built without an
// explicit configuration.
const DefaultLockWait = 5 * time.Second

// CreateInput is the payload for Create. InvitedFrom is the inviter's name
// (empty means no inviter); it is resolved to the inviter's stable id at write
// time. Fields a roster does not support are ignored.
type CreateInput struct {
	Name        string                  `json:"name"`
	InvitedFrom string                  `json:"invitedFrom"`
	IsStudent   bool                    `json:"isStudent"`
	UntilWhen   *time.Time              `json:"untilWhen"`
	IsLady      bool                    `json:"isLady"`
	Attended    models.AttendanceStatus `json:"attended"`
}

// CreateOptions carries per-call creation policy.
type CreateOptions struct {
	// FindOrCreate returns an existing participant with the same name
	// unchanged instead of failing with ErrDuplicateName. Honored only on
	// rosters configured to allow it (the guest QR-scan flow).
	FindOrCreate bool
}

// UpdateInput is a patch: nil fields are left untouched. A pointer to the
// empty string in InvitedFrom clears the inviter.
type UpdateInput struct {
	Name        *string                  `json:"name"`
	InvitedFrom *string                  `json:"invitedFrom"`
	IsStudent   *bool                    `json:"isStudent"`
	UntilWhen   *time.Time               `json:"untilWhen"`
	IsLady      *bool                    `json:"isLady"`
	Attended    *models.AttendanceStatus `json:"attended"`
	HasLeft     *bool                    `json:"hasLeft"`
}

// ILedgerService is the referral and loyalty ledger: every mutation leaves the
// roster consistent (referral counts match the invitation graph, coupon
// balances match referral count plus active discount credits).
type ILedgerService interface {
	Create(ctx context.Context, roster string, input CreateInput, opts CreateOptions) (*models.Participant, error)
	Update(ctx context.Context, roster, id string, patch UpdateInput) (*models.Participant, error)
	Delete(ctx context.Context, roster, id string) error
	ToggleDiscount(ctx context.Context, roster string, kind models.DiscountKind, active bool) error
	Recompute(ctx context.Context, roster string) error
	Get(ctx context.Context, roster, id string) (*models.Participant, error)
	List(ctx context.Context, roster string, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
}

// LedgerService implements ILedgerService on the gorm-backed store. It holds
// no roster state between calls; the store is the single shared resource and
// the lock guard its serialization discipline.
type LedgerService struct {
	db       *gorm.DB
	locks    *rosterlock.Guard
	lockWait time.Duration
}

// defaultLocks is shared by every service built through NewLedgerService, so
// handlers constructing their own instances still serialize against each other.
var defaultLocks = rosterlock.New()

// NewLedgerService builds a ledger on the shared database connection.
func NewLedgerService() ILedgerService {
	return NewLedgerServiceWith(configsdatabase.GetDB(), defaultLocks, DefaultLockWait)
}

// NewLedgerServiceWith builds a ledger with explicit dependencies (tests, or a
// main that wants a configured lock wait).
func NewLedgerServiceWith(db *gorm.DB, locks *rosterlock.Guard, lockWait time.Duration) ILedgerService {
	if locks == nil {
		locks = defaultLocks
	}
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &LedgerService{db: db, locks: locks, lockWait: lockWait}
}

// --- locking helpers ---

func (s *LedgerService) lockNames(ctx context.Context, roster string, names ...string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	release, err := s.locks.LockNames(lockCtx, roster, names...)
	if err != nil {
		return nil, ErrRosterBusy
	}
	return release, nil
}

func (s *LedgerService) lockRoster(ctx context.Context, roster string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	release, err := s.locks.LockRoster(lockCtx, roster)
	if err != nil {
		return nil, ErrRosterBusy
	}
	return release, nil
}

// --- read operations ---

// Get returns one participant with the inviter name resolved for display.
func (s *LedgerService) Get(ctx context.Context, roster, id string) (*models.Participant, error) {
	if _, ok := models.RosterByKey(roster); !ok {
		return nil, ErrUnknownRoster
	}
	repo := repositories.NewParticipantRepositoryTx(s.db)
	p, err := repo.FindByID(ctx, roster, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	s.resolveInviterNames(ctx, repo, roster, p)
	return p, nil
}

// List returns one page of the roster, inviter names resolved.
func (s *LedgerService) List(ctx context.Context, roster string, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if _, ok := models.RosterByKey(roster); !ok {
		return nil, ErrUnknownRoster
	}
	params.Validate()

	repo := repositories.NewParticipantRepositoryTx(s.db)
	list, total, err := repo.FindAllPaginated(ctx, roster, params)
	if err != nil {
		return nil, err
	}

	pagePtrs := make([]*models.Participant, len(list))
	for i := range list {
		pagePtrs[i] = &list[i]
	}
	s.resolveInviterNames(ctx, repo, roster, pagePtrs...)

	return &queryparams.PaginatedResult{
		Data: list,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  total,
			TotalPages:  queryparams.CalculateTotalPages(total, params.PerPage),
		},
	}, nil
}

// resolveInviterNames fills the display-only InvitedFrom field. Dangling
// inviter ids (inviter deleted since) resolve to the empty string.
func (s *LedgerService) resolveInviterNames(ctx context.Context, repo repositories.IParticipantRepository, roster string, participants ...*models.Participant) {
	ids := make([]string, 0, len(participants))
	seen := make(map[string]struct{})
	for _, p := range participants {
		if p.InvitedByID == nil {
			continue
		}
		if _, dup := seen[*p.InvitedByID]; dup {
			continue
		}
		seen[*p.InvitedByID] = struct{}{}
		ids = append(ids, *p.InvitedByID)
	}
	if len(ids) == 0 {
		return
	}
	names, err := repo.FindNamesByIDs(ctx, ids)
	if err != nil {
		configslog.Log.Warn("Failed to resolve inviter names", zap.String("roster", roster), zap.Error(err))
		return
	}
	for _, p := range participants {
		if p.InvitedByID != nil {
			p.InvitedFrom = names[*p.InvitedByID]
		}
	}
}

// --- create ---

// Create adds a participant. If an inviter is named it must exist, must not be
// the participant itself, and its referral count is incremented as part of the
// same transaction. Guest coupon balances start at the discount credits the
// current toggle state grants.
func (s *LedgerService) Create(ctx context.Context, roster string, input CreateInput, opts CreateOptions) (*models.Participant, error) {
	cfg, ok := models.RosterByKey(roster)
	if !ok {
		return nil, ErrUnknownRoster
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	inviterName := strings.TrimSpace(input.InvitedFrom)
	if inviterName == name {
		return nil, ErrSelfInvitation
	}
	attended := input.Attended
	if attended == "" {
		attended = models.AttendanceNotAttended
	}
	if !attended.Valid() {
		return nil, fmt.Errorf("%w: unknown attendance status %q", ErrInvalidInput, input.Attended)
	}

	release, err := s.lockNames(ctx, roster, name, inviterName)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *models.Participant
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewParticipantRepositoryTx(tx)

		existing, err := repoTx.FindByName(ctx, roster, name)
		if err == nil {
			if opts.FindOrCreate && cfg.AllowFindOrCreate {
				s.resolveInviterNames(ctx, repoTx, roster, existing)
				created = existing
				return nil
			}
			return ErrDuplicateName
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		var inviter *models.Participant
		if inviterName != "" {
			inviter, err = repoTx.FindByName(ctx, roster, inviterName)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrUnknownInviter
				}
				return err
			}
		}

		p := &models.Participant{
			Roster:    roster,
			Name:      name,
			IsStudent: input.IsStudent,
			Attended:  attended,
		}
		if p.IsStudent {
			p.UntilWhen = input.UntilWhen
		}
		if cfg.HasLadyFlag {
			p.IsLady = input.IsLady
		}
		if inviter != nil {
			p.InvitedByID = &inviter.ID
			p.InvitedFrom = inviter.Name
		}
		if attended == models.AttendanceAttended {
			now := time.Now().UTC()
			p.AttendedAt = &now
		}
		if cfg.HasCoupons {
			settings, err := repositories.NewRosterSettingsRepositoryTx(tx).Get(ctx, roster)
			if err != nil {
				return err
			}
			// Referral count starts at zero, so the initial balance is just
			// the active discount credits.
			p.DrinksCoupon = p.DiscountCredits(settings)
		}

		if err := repoTx.Create(ctx, p); err != nil {
			return err
		}
		if inviter != nil {
			if err := adjustReferral(ctx, repoTx, inviter.ID, +1, cfg.HasCoupons); err != nil {
				return err
			}
		}
		created = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Participant created: roster=%s name=%s id=%s", roster, created.Name, created.ID)
	return created, nil
}

// --- update ---

// Update applies a patch and re-establishes every ledger invariant before
// returning: referral deltas move between old and new inviter exactly once,
// coupon balances track flag changes under active toggles, and attendance
// follows the state machine.
func (s *LedgerService) Update(ctx context.Context, roster, id string, patch UpdateInput) (*models.Participant, error) {
	cfg, ok := models.RosterByKey(roster)
	if !ok {
		return nil, ErrUnknownRoster
	}

	// Unlocked pre-read, only to learn which names this operation touches.
	// The transactional re-read below is authoritative.
	repo := repositories.NewParticipantRepositoryTx(s.db)
	pre, err := repo.FindByID(ctx, roster, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	lockKeys := []string{pre.Name}
	if patch.Name != nil {
		lockKeys = append(lockKeys, strings.TrimSpace(*patch.Name))
	}
	if patch.InvitedFrom != nil {
		lockKeys = append(lockKeys, strings.TrimSpace(*patch.InvitedFrom))
	}
	if pre.InvitedByID != nil {
		if oldInviter, err := repo.FindByID(ctx, roster, *pre.InvitedByID); err == nil {
			lockKeys = append(lockKeys, oldInviter.Name)
		}
	}

	release, err := s.lockNames(ctx, roster, lockKeys...)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *models.Participant
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewParticipantRepositoryTx(tx)

		p, err := repoTx.FindByID(ctx, roster, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrParticipantNotFound
			}
			return err
		}

		var settings *models.RosterSettings
		if cfg.HasCoupons {
			settings, err = repositories.NewRosterSettingsRepositoryTx(tx).Get(ctx, roster)
			if err != nil {
				return err
			}
		}

		if err := s.applyNamePatch(ctx, repoTx, roster, p, patch.Name); err != nil {
			return err
		}
		if err := s.applyInviterPatch(ctx, repoTx, roster, cfg, p, patch.InvitedFrom); err != nil {
			return err
		}

		couponDelta := 0
		if patch.IsStudent != nil && *patch.IsStudent != p.IsStudent {
			if cfg.HasCoupons && settings.StudentDiscountActive {
				if *patch.IsStudent {
					couponDelta++
				} else {
					couponDelta--
				}
			}
			p.IsStudent = *patch.IsStudent
			if !p.IsStudent {
				// Expiry only means something while the flag is set.
				p.UntilWhen = nil
			}
		}
		if patch.UntilWhen != nil && p.IsStudent {
			p.UntilWhen = patch.UntilWhen
		}
		if patch.IsLady != nil && cfg.HasLadyFlag && *patch.IsLady != p.IsLady {
			if cfg.HasCoupons && settings.LadyDiscountActive {
				if *patch.IsLady {
					couponDelta++
				} else {
					couponDelta--
				}
			}
			p.IsLady = *patch.IsLady
		}
		if couponDelta != 0 {
			p.DrinksCoupon += couponDelta
			if p.DrinksCoupon < 0 {
				p.DrinksCoupon = 0
			}
		}

		if patch.HasLeft != nil && cfg.HasLeftFlag {
			p.HasLeft = *patch.HasLeft
		}

		if patch.Attended != nil {
			if err := applyAttendance(p, *patch.Attended, time.Now().UTC()); err != nil {
				return err
			}
		}

		if err := repoTx.Update(ctx, p); err != nil {
			return err
		}
		s.resolveInviterNames(ctx, repoTx, roster, p)
		updated = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Participant updated: roster=%s name=%s id=%s", roster, updated.Name, updated.ID)
	return updated, nil
}

// applyNamePatch renames a participant. Inbound referrals are keyed by the
// stable id, so a rename never touches anyone else's state.
func (s *LedgerService) applyNamePatch(ctx context.Context, repoTx repositories.IParticipantRepository, roster string, p *models.Participant, namePatch *string) error {
	if namePatch == nil {
		return nil
	}
	newName := strings.TrimSpace(*namePatch)
	if newName == "" {
		return ErrNameRequired
	}
	if newName == p.Name {
		return nil
	}
	if other, err := repoTx.FindByName(ctx, roster, newName); err == nil && other.ID != p.ID {
		return ErrDuplicateName
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	p.Name = newName
	return nil
}

// applyInviterPatch rewires the inviter reference and moves the referral
// delta: the old inviter (if it still exists) loses one, the new gains one.
// When old and new resolve to the same record nothing is applied, so the
// delta can never be double-counted.
func (s *LedgerService) applyInviterPatch(ctx context.Context, repoTx repositories.IParticipantRepository, roster string, cfg models.RosterConfig, p *models.Participant, inviterPatch *string) error {
	if inviterPatch == nil {
		return nil
	}
	target := strings.TrimSpace(*inviterPatch)

	var newInviterID *string
	if target != "" {
		// Self-invitation is judged against the participant's current name,
		// i.e. the patched one when the same call renames it.
		if target == p.Name {
			return ErrSelfInvitation
		}
		inviter, err := repoTx.FindByName(ctx, roster, target)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrUnknownInviter
			}
			return err
		}
		if inviter.ID == p.ID {
			return ErrSelfInvitation
		}
		newInviterID = &inviter.ID
	}

	oldID := p.InvitedByID
	if equalID(oldID, newInviterID) {
		return nil
	}
	if oldID != nil {
		// A dangling old inviter (deleted since) simply contributes nothing.
		if err := adjustReferral(ctx, repoTx, *oldID, -1, cfg.HasCoupons); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
	}
	if newInviterID != nil {
		if err := adjustReferral(ctx, repoTx, *newInviterID, +1, cfg.HasCoupons); err != nil {
			return err
		}
	}
	p.InvitedByID = newInviterID
	return nil
}

// adjustReferral moves a referral delta on the inviter's counters. On coupon
// rosters the balance tracks the referral count one-for-one (the discount
// credits ride on top), so both move together.
func adjustReferral(ctx context.Context, repoTx repositories.IParticipantRepository, inviterID string, delta int, hasCoupons bool) error {
	if err := repoTx.AdjustMembersInvited(ctx, inviterID, delta); err != nil {
		return err
	}
	if hasCoupons {
		if err := repoTx.AdjustDrinksCoupon(ctx, inviterID, delta); err != nil {
			return err
		}
	}
	return nil
}

func equalID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// --- delete ---

// Delete removes a participant and repairs its own inviter's referral count.
// Records that named the deleted participant as their inviter are left
// untouched; their reference dangles and counts for nothing from now on.
func (s *LedgerService) Delete(ctx context.Context, roster, id string) error {
	cfg, ok := models.RosterByKey(roster)
	if !ok {
		return ErrUnknownRoster
	}

	repo := repositories.NewParticipantRepositoryTx(s.db)
	pre, err := repo.FindByID(ctx, roster, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}

	lockKeys := []string{pre.Name}
	if pre.InvitedByID != nil {
		if inviter, err := repo.FindByID(ctx, roster, *pre.InvitedByID); err == nil {
			lockKeys = append(lockKeys, inviter.Name)
		}
	}

	release, err := s.lockNames(ctx, roster, lockKeys...)
	if err != nil {
		return err
	}
	defer release()

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewParticipantRepositoryTx(tx)

		p, err := repoTx.FindByID(ctx, roster, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrParticipantNotFound
			}
			return err
		}
		if p.InvitedByID != nil {
			if err := adjustReferral(ctx, repoTx, *p.InvitedByID, -1, cfg.HasCoupons); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
		}
		return repoTx.Delete(ctx, p)
	})
	if txErr != nil {
		return txErr
	}

	configslog.SLog.Infof("Participant deleted: roster=%s name=%s id=%s", roster, pre.Name, id)
	return nil
}

// --- discount toggles ---

// ToggleDiscount flips a roster-wide discount. Activating grants one coupon
// credit to every participant carrying the matching flag; deactivating takes
// it back, clamped at zero. The whole scan runs under the roster-exclusive
// lock as one unit of work. Re-asserting the current state is a no-op.
func (s *LedgerService) ToggleDiscount(ctx context.Context, roster string, kind models.DiscountKind, active bool) error {
	cfg, ok := models.RosterByKey(roster)
	if !ok {
		return ErrUnknownRoster
	}
	if !cfg.HasCoupons {
		return ErrDiscountUnsupported
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown discount kind %q", ErrInvalidInput, kind)
	}

	release, err := s.lockRoster(ctx, roster)
	if err != nil {
		return err
	}
	defer release()

	changed := false
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		settingsRepoTx := repositories.NewRosterSettingsRepositoryTx(tx)
		settings, err := settingsRepoTx.Get(ctx, roster)
		if err != nil {
			return err
		}

		switch kind {
		case models.DiscountStudent:
			if settings.StudentDiscountActive == active {
				return nil
			}
			settings.StudentDiscountActive = active
		case models.DiscountLady:
			if settings.LadyDiscountActive == active {
				return nil
			}
			settings.LadyDiscountActive = active
		}
		if err := settingsRepoTx.Save(ctx, settings); err != nil {
			return err
		}

		delta := -1
		if active {
			delta = 1
		}
		repoTx := repositories.NewParticipantRepositoryTx(tx)
		list, err := repoTx.FindAll(ctx, roster)
		if err != nil {
			return err
		}
		for i := range list {
			p := &list[i]
			flagged := (kind == models.DiscountStudent && p.IsStudent) ||
				(kind == models.DiscountLady && p.IsLady)
			if !flagged {
				continue
			}
			if err := repoTx.AdjustDrinksCoupon(ctx, p.ID, delta); err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if changed {
		configslog.SLog.Infof("Discount toggled: roster=%s kind=%s active=%t", roster, kind, active)
	}
	return nil
}

// --- recompute ---

// Recompute rebuilds every derived field from the invitation graph and the
// persisted toggle state, overwriting whatever the incremental paths left
// behind. It exists to repair drift after out-of-band edits and is idempotent:
// a second run changes nothing. It never adds on top of existing balances.
func (s *LedgerService) Recompute(ctx context.Context, roster string) error {
	cfg, ok := models.RosterByKey(roster)
	if !ok {
		return ErrUnknownRoster
	}

	release, err := s.lockRoster(ctx, roster)
	if err != nil {
		return err
	}
	defer release()

	updated := 0
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewParticipantRepositoryTx(tx)
		list, err := repoTx.FindAll(ctx, roster)
		if err != nil {
			return err
		}

		// Dangling inviter ids key counts nobody ever reads back.
		referrals := make(map[string]int, len(list))
		for i := range list {
			if list[i].InvitedByID != nil {
				referrals[*list[i].InvitedByID]++
			}
		}

		var settings *models.RosterSettings
		if cfg.HasCoupons {
			settings, err = repositories.NewRosterSettingsRepositoryTx(tx).Get(ctx, roster)
			if err != nil {
				return err
			}
		}

		for i := range list {
			p := &list[i]
			wantInvited := referrals[p.ID]
			wantCoupon := p.DrinksCoupon
			if cfg.HasCoupons {
				wantCoupon = wantInvited + p.DiscountCredits(settings)
			}
			if p.MembersInvited == wantInvited && p.DrinksCoupon == wantCoupon {
				continue
			}
			p.MembersInvited = wantInvited
			p.DrinksCoupon = wantCoupon
			if err := repoTx.Update(ctx, p); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	configslog.SLog.Infof("Ledger recomputed: roster=%s participants_rewritten=%d", roster, updated)
	return nil
}

var _ ILedgerService = (*LedgerService)(nil)
