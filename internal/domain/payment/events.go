package payment

import (
	"time"

	"github.com/google/uuid"
)

const EventRefundRequested = "refund.requested"

// RefundRequested asks the payment side to return money captured for an
// intent that could not become a booking.
type RefundRequested struct {
	IntentID    string      `json:"intent_id"`
	StudentID   uuid.UUID   `json:"student_id"`
	SlotIDs     []uuid.UUID `json:"slot_ids"`
	Amount      int64       `json:"amount"`
	Currency    string      `json:"currency"`
	Reason      string      `json:"reason"`
	RequestedAt time.Time   `json:"requested_at"`
}
