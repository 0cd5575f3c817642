package models

// Roster keys. Three parallel rosters share the Participant shape and one
// generic ledger engine.
const (
	RosterGuests  = "guests"
	RosterMembers = "members"
	RosterBpplist = "bpplist"
)

// DiscountKind names a roster-wide discount toggle (guest roster only).
type DiscountKind string

const (
	DiscountStudent DiscountKind = "student"
	DiscountLady    DiscountKind = "lady"
)

// Valid reports whether k is a known discount kind.
func (k DiscountKind) Valid() bool {
	return k == DiscountStudent || k == DiscountLady
}

// RosterConfig declares a roster's capabilities. The engine behaves
// identically across rosters except where gated by these flags.
type RosterConfig struct {
	Key string
	// HasCoupons enables the coupon balance and the discount toggles.
	HasCoupons bool
	// HasLadyFlag enables the lady flag (and its discount credit).
	HasLadyFlag bool
	// HasLeftFlag enables the independent has-left status flag.
	HasLeftFlag bool
	// AllowFindOrCreate permits create calls to opt into find-or-create
	// semantics (used by the guest QR-scan flow). Rosters without it always
	// reject duplicate names.
	AllowFindOrCreate bool
}

var rosters = map[string]RosterConfig{
	RosterGuests: {
		Key:               RosterGuests,
		HasCoupons:        true,
		HasLadyFlag:       true,
		AllowFindOrCreate: true,
	},
	RosterMembers: {
		Key:         RosterMembers,
		HasLeftFlag: true,
	},
	RosterBpplist: {
		Key:         RosterBpplist,
		HasLeftFlag: true,
	},
}

// RosterByKey looks up a roster configuration.
func RosterByKey(key string) (RosterConfig, bool) {
	cfg, ok := rosters[key]
	return cfg, ok
}

// RosterKeys returns the known roster keys.
func RosterKeys() []string {
	return []string{RosterGuests, RosterMembers, RosterBpplist}
}

// RosterSettings is per-roster process state persisted in the store: the two
// global discount toggles. Kept in the database (not in memory) so toggle
// state survives restarts and is shared across instances; read-modify-writes
// happen under the roster-exclusive lock.
type RosterSettings struct {
	BaseModel
	Roster                string `gorm:"type:varchar(20);uniqueIndex;not null" json:"roster"`
	StudentDiscountActive bool   `gorm:"not null;default:false" json:"studentDiscountActive"`
	LadyDiscountActive    bool   `gorm:"not null;default:false" json:"ladyDiscountActive"`
}
