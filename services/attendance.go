package services

import (
	"time"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

// applyAttendance runs the door check-in state machine on p:
//
//	NotAttended -> Attended   stamps AttendedAt
//	Attended    -> Attended   rejected (double-scan guard)
//	any         -> NotAttended clears AttendedAt (used to correct mis-scans)
//
// Repeating NotAttended is a harmless no-op. AttendedAt is non-nil exactly
// while the participant is marked attended.
func applyAttendance(p *models.Participant, next models.AttendanceStatus, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidInput
	}
	switch next {
	case models.AttendanceAttended:
		if p.Attended == models.AttendanceAttended {
			return ErrAlreadyAttended
		}
		p.Attended = models.AttendanceAttended
		p.AttendedAt = &now
	case models.AttendanceNotAttended:
		p.Attended = models.AttendanceNotAttended
		p.AttendedAt = nil
	}
	return nil
}
