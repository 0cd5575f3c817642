package models

import "time"

// AttendanceStatus tracks whether a participant has checked in at the door.
type AttendanceStatus string

const (
	AttendanceNotAttended AttendanceStatus = "not_attended"
	AttendanceAttended    AttendanceStatus = "attended"
)

// Valid reports whether s is one of the known attendance states.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceNotAttended || s == AttendanceAttended
}

// Participant is one roster entry (guest, member or bpplist attendee).
// The three rosters share this shape; roster-specific fields are simply
// unused elsewhere (DrinksCoupon/IsLady on guests, HasLeft on the others).
//
// The referral graph is keyed by InvitedByID, the inviter's stable id,
// resolved from the supplied name at write time. Renaming a participant
// therefore never orphans inbound referrals; deleting one leaves dangling
// ids that contribute nothing to any count. InvitedFrom is a display-only
// projection of the inviter's current name, filled in on reads.
type Participant struct {
	BaseModel
	Roster string `gorm:"type:varchar(20);not null;index;uniqueIndex:idx_participants_roster_name,priority:1" json:"roster"`
	Name   string `gorm:"type:varchar(150);not null;uniqueIndex:idx_participants_roster_name,priority:2" json:"name"`

	InvitedByID *string `gorm:"type:varchar(36);index" json:"-"`
	InvitedFrom string  `gorm:"-" json:"invitedFrom"`

	// MembersInvited is the referral count: how many participants list this
	// one as their inviter. DrinksCoupon (guest roster) additionally folds in
	// the currently active discount credits. Both are derived, never edited
	// directly, and floored at zero.
	MembersInvited int `gorm:"not null;default:0" json:"membersInvited"`
	DrinksCoupon   int `gorm:"not null;default:0" json:"drinksCoupon"`

	Attended   AttendanceStatus `gorm:"type:varchar(20);not null;default:'not_attended';index" json:"attended"`
	AttendedAt *time.Time       `json:"attendedAt"`

	IsStudent bool       `gorm:"not null;default:false" json:"isStudent"`
	UntilWhen *time.Time `json:"untilWhen"`
	IsLady    bool       `gorm:"not null;default:false" json:"isLady"`
	HasLeft   bool       `gorm:"not null;default:false" json:"hasLeft"`
}

// DiscountCredits returns how many coupon credits the participant's flags are
// worth under the given toggle state (guest roster only).
func (p *Participant) DiscountCredits(settings *RosterSettings) int {
	credits := 0
	if settings.StudentDiscountActive && p.IsStudent {
		credits++
	}
	if settings.LadyDiscountActive && p.IsLady {
		credits++
	}
	return credits
}
