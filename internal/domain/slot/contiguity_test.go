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

func mustSlot(t *testing.T, provider uuid.UUID, start time.Time, d time.Duration) *slot.Slot {
	t.Helper()
	s, err := slot.NewSlot(provider, start, start, start.Add(d))
	require.NoError(t, err)
	return s
}

func TestValidateContiguous(t *testing.T) {
	t.Run("sorts an unordered block", func(t *testing.T) {
		block := builder.NewSlotBuilder().WithCount(3).BuildBlock()
		shuffled := []*slot.Slot{block[2], block[0], block[1]}

		sorted, err := slot.ValidateContiguous(shuffled)
		require.NoError(t, err)
		assert.Equal(t, slot.IDs(block), slot.IDs(sorted))
	})

	t.Run("single slot is a block", func(t *testing.T) {
		sorted, err := slot.ValidateContiguous(builder.NewSlotBuilder().BuildBlock())
		require.NoError(t, err)
		assert.Len(t, sorted, 1)
	})

	provider := uuid.New()
	nine := builder.BaseDay.Add(9 * time.Hour)
	half := 30 * time.Minute

	cases := []struct {
		name  string
		slots func() []*slot.Slot
		errIs error
	}{
		{
			name:  "empty",
			slots: func() []*slot.Slot { return nil },
			errIs: slot.ErrEmptySelection,
		},
		{
			name: "duplicate",
			slots: func() []*slot.Slot {
				s := mustSlot(t, provider, nine, half)
				return []*slot.Slot{s, s}
			},
			errIs: slot.ErrDuplicateSlot,
		},
		{
			name: "gap between slots",
			slots: func() []*slot.Slot {
				return []*slot.Slot{
					mustSlot(t, provider, nine, half),
					mustSlot(t, provider, nine.Add(time.Hour), half),
				}
			},
			errIs: slot.ErrNotContiguous,
		},
		{
			name: "overlapping slots",
			slots: func() []*slot.Slot {
				return []*slot.Slot{
					mustSlot(t, provider, nine, half),
					mustSlot(t, provider, nine, half),
				}
			},
			errIs: slot.ErrNotContiguous,
		},
		{
			name: "different providers",
			slots: func() []*slot.Slot {
				return []*slot.Slot{
					mustSlot(t, provider, nine, half),
					mustSlot(t, uuid.New(), nine.Add(half), half),
				}
			},
			errIs: slot.ErrMixedProviders,
		},
		{
			name: "different dates",
			slots: func() []*slot.Slot {
				return []*slot.Slot{
					mustSlot(t, provider, nine, half),
					mustSlot(t, provider, nine.Add(24*time.Hour), half),
				}
			},
			errIs: slot.ErrMixedDates,
		},
		{
			name: "different durations",
			slots: func() []*slot.Slot {
				return []*slot.Slot{
					mustSlot(t, provider, nine, half),
					mustSlot(t, provider, nine.Add(half), time.Hour),
				}
			},
			errIs: slot.ErrUnevenDuration,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := slot.ValidateContiguous(tc.slots())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.errIs)
			assert.True(t, slot.IsSelectionError(err))
		})
	}
}

func TestValidateContiguous_HourlyMorning(t *testing.T) {
	provider := uuid.New()
	day := builder.BaseDay
	nine := mustSlot(t, provider, day.Add(9*time.Hour), time.Hour)
	ten := mustSlot(t, provider, day.Add(10*time.Hour), time.Hour)
	eleven := mustSlot(t, provider, day.Add(11*time.Hour), time.Hour)

	tests := []struct {
		name  string
		slots []*slot.Slot
		ok    bool
	}{
		{"09 and 10", []*slot.Slot{nine, ten}, true},
		{"10 and 11", []*slot.Slot{ten, eleven}, true},
		{"09 and 11 skip an hour", []*slot.Slot{nine, eleven}, false},
		{"whole morning out of order", []*slot.Slot{eleven, nine, ten}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := slot.ValidateContiguous(tt.slots)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, slot.ErrNotContiguous)
			}
		})
	}
}

func TestValidateIDs(t *testing.T) {
	id := uuid.New()
	assert.ErrorIs(t, slot.ValidateIDs(nil), slot.ErrEmptySelection)
	assert.ErrorIs(t, slot.ValidateIDs([]uuid.UUID{id, id}), slot.ErrDuplicateSlot)
	assert.NoError(t, slot.ValidateIDs([]uuid.UUID{id, uuid.New()}))
}
