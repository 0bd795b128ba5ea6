package response

import (
	"time"

	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type AvailableSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type AvailabilityResponse struct {
	ProviderID uuid.UUID               `json:"provider_id"`
	Date       string                  `json:"date"`
	Slots      []AvailableSlotResponse `json:"slots"`
}

func FromAvailableSlot(s queries.AvailableSlot) AvailableSlotResponse {
	return AvailableSlotResponse{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime}
}

type LeaseResponse struct {
	SlotIDs        []uuid.UUID `json:"slot_ids,omitempty"`
	LeaseToken     uuid.UUID   `json:"lease_token"`
	LeaseExpiresAt time.Time   `json:"lease_expires_at"`
}

func FromReserveResult(r *commands.ReserveResult) LeaseResponse {
	return LeaseResponse{SlotIDs: r.SlotIDs, LeaseToken: r.LeaseToken, LeaseExpiresAt: r.LeaseExpiresAt}
}

type CheckoutResponse struct {
	IntentID       string      `json:"intent_id"`
	ClientSecret   string      `json:"client_secret"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	SlotIDs        []uuid.UUID `json:"slot_ids"`
	LeaseToken     uuid.UUID   `json:"lease_token"`
	LeaseExpiresAt time.Time   `json:"lease_expires_at"`
}

func FromCheckoutResult(r *commands.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		IntentID:       r.IntentID,
		ClientSecret:   r.ClientSecret,
		Amount:         r.Amount.Amount(),
		Currency:       r.Amount.Currency(),
		SlotIDs:        r.SlotIDs,
		LeaseToken:     r.LeaseToken,
		LeaseExpiresAt: r.LeaseExpiresAt,
	}
}

type SettlementResponse struct {
	IntentID string               `json:"intent_id"`
	Status   string               `json:"status"`
	Reason   *string              `json:"reason,omitempty"`
	Booking  *queries.BookingView `json:"booking,omitempty"`
}

func FromSettlement(r *commands.SettlementResult, view *queries.BookingView) SettlementResponse {
	resp := SettlementResponse{
		IntentID: r.IntentID,
		Status:   r.State.String(),
		Booking:  view,
	}
	if r.RejectReason != nil {
		reason := r.RejectReason.String()
		resp.Reason = &reason
	}
	return resp
}

type CancelBookingResponse struct {
	BookingID     uuid.UUID   `json:"booking_id"`
	Status        string      `json:"status"`
	ReleasedSlots []uuid.UUID `json:"released_slot_ids"`
}

type BookingListResponse struct {
	Items      []*queries.BookingListItem `json:"items"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}

type PublishSlotsResponse struct {
	Requested int   `json:"requested"`
	Inserted  int64 `json:"inserted"`
}
