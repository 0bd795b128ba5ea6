//go:build unit

package slot_test

import (
	"testing"
	"time"

	"tutor-booking/internal/domain/slot"
	"tutor-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlot(t *testing.T) {
	day := builder.BaseDay
	start := day.Add(10 * time.Hour)

	t.Run("creates free slot", func(t *testing.T) {
		s, err := slot.NewSlot(uuid.New(), day, start, start.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, s.IsFree())
		assert.Nil(t, s.Lease())
		assert.Equal(t, time.Hour, s.Duration())
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := slot.NewSlot(uuid.New(), day, start, start)
		assert.ErrorIs(t, err, slot.ErrInvalidTimeRange)
	})

	t.Run("rejects start on another day", func(t *testing.T) {
		_, err := slot.NewSlot(uuid.New(), day.Add(24*time.Hour), start, start.Add(time.Hour))
		assert.ErrorIs(t, err, slot.ErrDateMismatch)
	})

	t.Run("rejects missing provider", func(t *testing.T) {
		_, err := slot.NewSlot(uuid.Nil, day, start, start.Add(time.Hour))
		assert.ErrorIs(t, err, slot.ErrMissingProvider)
	})
}

func TestLeaseVisibility(t *testing.T) {
	now := builder.BaseDay.Add(8 * time.Hour)
	lease, err := slot.NewLease(now, slot.DefaultLeaseTTL)
	require.NoError(t, err)
	s := builder.Leased(builder.NewSlotBuilder().BuildOne(), lease)

	assert.True(t, s.IsLeased(now))
	assert.False(t, s.IsAvailableAt(now))
	assert.True(t, s.HeldBy(lease.Token(), now))
	assert.False(t, s.HeldBy(uuid.New(), now))

	almost := now.Add(slot.DefaultLeaseTTL - time.Nanosecond)
	assert.True(t, s.IsLeased(almost))

	expiry := now.Add(slot.DefaultLeaseTTL)
	assert.False(t, s.IsLeased(expiry), "lease lapses exactly at its expiry")
	assert.True(t, s.IsAvailableAt(expiry))
}

func TestBookedSlotIsNeverAvailable(t *testing.T) {
	s := builder.Booked(builder.NewSlotBuilder().BuildOne(), uuid.New())
	assert.False(t, s.IsFree())
	assert.False(t, s.IsAvailableAt(builder.BaseDay))
}

func TestReissue(t *testing.T) {
	booked := builder.Booked(builder.NewSlotBuilder().BuildOne(), uuid.New())
	fresh := booked.Reissue()

	assert.NotEqual(t, booked.ID(), fresh.ID())
	assert.True(t, fresh.IsFree())
	assert.Nil(t, fresh.BookingID())
	assert.Equal(t, booked.StartTime(), fresh.StartTime())
	assert.Equal(t, booked.ProviderID(), fresh.ProviderID())
}

func TestNewLease(t *testing.T) {
	_, err := slot.NewLease(time.Now(), 0)
	assert.ErrorIs(t, err, slot.ErrInvalidLeaseTTL)

	now := time.Now()
	l, err := slot.NewLease(now, time.Minute)
	require.NoError(t, err)
	extended, err := l.Extend(now.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, l.Token(), extended.Token())
	assert.Equal(t, now.Add(90*time.Second), extended.ExpiresAt())
}
