package booking

import (
	"time"

	"github.com/google/uuid"
)

// Confirmed is published once a booking has committed.
type Confirmed struct {
	BookingID   uuid.UUID   `json:"booking_id"`
	StudentID   uuid.UUID   `json:"student_id"`
	ProviderID  uuid.UUID   `json:"provider_id"`
	SlotIDs     []uuid.UUID `json:"slot_ids"`
	Amount      int64       `json:"amount"`
	Currency    string      `json:"currency"`
	IntentID    string      `json:"intent_id"`
	ConfirmedAt time.Time   `json:"confirmed_at"`
}

// Canceled carries the fresh slot ids that replaced the booked ones.
type Canceled struct {
	BookingID     uuid.UUID   `json:"booking_id"`
	StudentID     uuid.UUID   `json:"student_id"`
	ProviderID    uuid.UUID   `json:"provider_id"`
	ReleasedSlots []uuid.UUID `json:"released_slots"`
	CanceledAt    time.Time   `json:"canceled_at"`
}

func NewConfirmed(b *Booking) Confirmed {
	return Confirmed{
		BookingID:   b.id,
		StudentID:   b.studentID,
		ProviderID:  b.providerID,
		SlotIDs:     b.SlotIDs(),
		Amount:      b.price.Amount(),
		Currency:    b.price.Currency(),
		IntentID:    b.intentID,
		ConfirmedAt: b.updatedAt,
	}
}

func NewCanceled(b *Booking, released []uuid.UUID) Canceled {
	canceledAt := b.updatedAt
	if b.canceledAt != nil {
		canceledAt = *b.canceledAt
	}
	return Canceled{
		BookingID:     b.id,
		StudentID:     b.studentID,
		ProviderID:    b.providerID,
		ReleasedSlots: released,
		CanceledAt:    canceledAt,
	}
}
