package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

func TestStatsPublicView(t *testing.T) {
	svc, db := newTestLedger(t)
	stats := NewStatsServiceWith(db)
	ctx := context.Background()

	mustCreate(t, svc, models.RosterGuests, CreateInput{Name: "Alice", Attended: models.AttendanceAttended})
	mustCreate(t, svc, models.RosterGuests, CreateInput{Name: "Bob", InvitedFrom: "Alice"})
	mustCreate(t, svc, models.RosterGuests, CreateInput{Name: "Carol", IsStudent: true})

	got, err := stats.Stats(ctx, models.RosterGuests, false)
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Total)
	require.Equal(t, int64(1), got.Attended)
	require.Nil(t, got.Restricted, "public view must not expose restricted counts")
}

func TestStatsPrivilegedView(t *testing.T) {
	svc, db := newTestLedger(t)
	stats := NewStatsServiceWith(db)
	ctx := context.Background()

	mustCreate(t, svc, models.RosterGuests, CreateInput{Name: "Alice"})
	mustCreate(t, svc, models.RosterGuests, CreateInput{Name: "Bob", InvitedFrom: "Alice", IsStudent: true})
	mustCreate(t, svc, models.RosterGuests, CreateInput{Name: "Carol", IsLady: true})

	require.NoError(t, svc.ToggleDiscount(ctx, models.RosterGuests, models.DiscountStudent, true))

	got, err := stats.Stats(ctx, models.RosterGuests, true)
	require.NoError(t, err)
	require.NotNil(t, got.Restricted)
	require.Equal(t, int64(1), got.Restricted.Students)
	require.Equal(t, int64(1), got.Restricted.Ladies)
	// Alice holds one referral coupon, Bob one student credit.
	require.Equal(t, int64(2), got.Restricted.CouponTotal)
	// Only Bob qualifies for free entry (active student discount).
	require.Equal(t, int64(1), got.Restricted.FreeEntry)
}

func TestStatsRosterWithoutCoupons(t *testing.T) {
	svc, db := newTestLedger(t)
	stats := NewStatsServiceWith(db)
	ctx := context.Background()

	mustCreate(t, svc, models.RosterMembers, CreateInput{Name: "Dana", IsStudent: true})

	got, err := stats.Stats(ctx, models.RosterMembers, true)
	require.NoError(t, err)
	require.NotNil(t, got.Restricted)
	require.Equal(t, int64(1), got.Restricted.Students)
	// Members carry neither a lady flag nor coupons, so those stay zero.
	require.Equal(t, int64(0), got.Restricted.Ladies)
	require.Equal(t, int64(0), got.Restricted.CouponTotal)
	require.Equal(t, int64(0), got.Restricted.FreeEntry)
}

func TestStatsUnknownRoster(t *testing.T) {
	_, db := newTestLedger(t)
	stats := NewStatsServiceWith(db)

	_, err := stats.Stats(context.Background(), "vips", true)
	require.ErrorIs(t, err, ErrUnknownRoster)
}
