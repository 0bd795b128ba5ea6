//go:build unit || e2e

package builder

import (
	"time"

	"tutor-booking/internal/domain/slot"

	"github.com/google/uuid"
)

// BaseDay is the calendar day every builder-produced slot falls on unless overridden.
var BaseDay = time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC)

type SlotBuilder struct {
	ProviderID uuid.UUID
	Date       time.Time
	FirstStart time.Time
	Duration   time.Duration
	Count      int
}

func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{
		ProviderID: uuid.New(),
		Date:       BaseDay,
		FirstStart: BaseDay.Add(9 * time.Hour),
		Duration:   30 * time.Minute,
		Count:      1,
	}
}

func (b *SlotBuilder) With(mutate func(*SlotBuilder)) *SlotBuilder {
	mutate(b)
	return b
}

func (b *SlotBuilder) WithCount(n int) *SlotBuilder {
	b.Count = n
	return b
}

func (b *SlotBuilder) WithProvider(id uuid.UUID) *SlotBuilder {
	b.ProviderID = id
	return b
}

func (b *SlotBuilder) StartingAt(t time.Time) *SlotBuilder {
	b.FirstStart = t
	b.Date = slot.TruncateDate(t)
	return b
}

// BuildBlock returns Count back-to-back free slots.
func (b *SlotBuilder) BuildBlock() []*slot.Slot {
	out := make([]*slot.Slot, 0, b.Count)
	for i := range b.Count {
		start := b.FirstStart.Add(time.Duration(i) * b.Duration)
		s, err := slot.NewSlot(b.ProviderID, b.Date, start, start.Add(b.Duration))
		if err != nil {
			panic(err)
		}
		out = append(out, s)
	}
	return out
}

func (b *SlotBuilder) BuildOne() *slot.Slot {
	return b.WithCount(1).BuildBlock()[0]
}

func Leased(s *slot.Slot, lease slot.Lease) *slot.Slot {
	return slot.Reconstruct(s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime(), s.Status(), &lease, s.BookingID(), s.RetiredAt())
}

func Booked(s *slot.Slot, bookingID uuid.UUID) *slot.Slot {
	return slot.Reconstruct(s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime(), slot.StatusBooked, s.Lease(), &bookingID, s.RetiredAt())
}
