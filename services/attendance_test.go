package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

func TestApplyAttendance(t *testing.T) {
	now := time.Now()
	p := &models.Participant{Attended: models.AttendanceNotAttended}

	require.NoError(t, applyAttendance(p, models.AttendanceAttended, now))
	require.Equal(t, models.AttendanceAttended, p.Attended)
	require.NotNil(t, p.AttendedAt)
	require.True(t, p.AttendedAt.Equal(now))

	// Second scan at the door is rejected, the first stamp survives.
	err := applyAttendance(p, models.AttendanceAttended, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrAlreadyAttended)
	require.True(t, p.AttendedAt.Equal(now))

	require.NoError(t, applyAttendance(p, models.AttendanceNotAttended, now))
	require.Equal(t, models.AttendanceNotAttended, p.Attended)
	require.Nil(t, p.AttendedAt)

	// Un-marking twice is a harmless no-op.
	require.NoError(t, applyAttendance(p, models.AttendanceNotAttended, now))

	err = applyAttendance(p, models.AttendanceStatus("maybe"), now)
	require.ErrorIs(t, err, ErrInvalidInput)
}
