package queries

import (
	"context"
	"iter"
	"time"

	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type AvailableSlot struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Date       time.Time `json:"date"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// AvailabilityReadStore streams the provider's free, non-retired slots for a
// date ordered by start time. Lease filtering is left to the caller.
type AvailabilityReadStore interface {
	StreamFree(ctx context.Context, providerID uuid.UUID, date time.Time) iter.Seq2[*slot.Slot, error]
}

type AvailabilityQueries interface {
	// List yields bookable slots lazily. The sequence stops after the first error.
	List(ctx context.Context, providerID uuid.UUID, date time.Time) iter.Seq2[AvailableSlot, error]
}

type availabilityQueriesImpl struct {
	store AvailabilityReadStore
	clock clock.Clock
}

func NewAvailabilityQueries(store AvailabilityReadStore, clk clock.Clock) AvailabilityQueries {
	return &availabilityQueriesImpl{store: store, clock: clk}
}

func (q *availabilityQueriesImpl) List(ctx context.Context, providerID uuid.UUID, date time.Time) iter.Seq2[AvailableSlot, error] {
	return func(yield func(AvailableSlot, error) bool) {
		// read once per call so a cached sequence never reuses a stale now
		now := q.clock.Now()
		for s, err := range q.store.StreamFree(ctx, providerID, slot.TruncateDate(date)) {
			if err != nil {
				yield(AvailableSlot{}, err)
				return
			}
			if !s.IsAvailableAt(now) {
				continue
			}
			if !yield(toAvailableSlot(s), nil) {
				return
			}
		}
	}
}

func toAvailableSlot(s *slot.Slot) AvailableSlot {
	return AvailableSlot{
		ID:         s.ID(),
		ProviderID: s.ProviderID(),
		Date:       s.Date(),
		StartTime:  s.StartTime(),
		EndTime:    s.EndTime(),
	}
}
