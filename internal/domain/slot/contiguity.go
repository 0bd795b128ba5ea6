package slot

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrEmptySelection   = errors.New("selection must contain at least one slot")
	ErrDuplicateSlot    = errors.New("selection contains the same slot twice")
	ErrMixedProviders   = errors.New("selected slots belong to different providers")
	ErrMixedDates       = errors.New("selected slots fall on different dates")
	ErrUnevenDuration   = errors.New("selected slots have different durations")
	ErrNotContiguous    = errors.New("selected slots do not form one continuous block")
	errSelectionMarkers = []error{
		ErrEmptySelection, ErrDuplicateSlot, ErrMixedProviders,
		ErrMixedDates, ErrUnevenDuration, ErrNotContiguous,
	}
)

// IsSelectionError reports whether err came from selection validation.
func IsSelectionError(err error) bool {
	for _, target := range errSelectionMarkers {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidateIDs checks the shape of a selection before anything is loaded.
func ValidateIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateSlot
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateContiguous accepts slots in any order and returns them sorted by start
// time when they form one gap-free block for a single provider on a single date.
// Every slot must share the first slot's duration and each slot must end exactly
// where the next begins.
func ValidateContiguous(slots []*Slot) ([]*Slot, error) {
	if len(slots) == 0 {
		return nil, ErrEmptySelection
	}
	if err := ValidateIDs(IDs(slots)); err != nil {
		return nil, err
	}

	sorted := slices.Clone(slots)
	slices.SortFunc(sorted, func(a, b *Slot) int {
		return a.startTime.Compare(b.startTime)
	})

	first := sorted[0]
	unit := first.Duration()
	for i, s := range sorted {
		if s.providerID != first.providerID {
			return nil, ErrMixedProviders
		}
		if !s.date.Equal(first.date) {
			return nil, ErrMixedDates
		}
		if s.Duration() != unit {
			return nil, ErrUnevenDuration
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if s.startTime.Sub(prev.startTime) != unit || !prev.endTime.Equal(s.startTime) {
			return nil, ErrNotContiguous
		}
	}
	return sorted, nil
}
