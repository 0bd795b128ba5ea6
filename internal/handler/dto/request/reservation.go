package request

import (
	"time"

	"tutor-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReserveRequest struct {
	SlotIDs    []uuid.UUID `json:"slot_ids" binding:"required,min=1"`
	LeaseToken *uuid.UUID  `json:"lease_token,omitempty"`
}

func (r ReserveRequest) ToInput() commands.ReserveInput {
	return commands.ReserveInput{SlotIDs: r.SlotIDs, LeaseToken: r.LeaseToken}
}

type LeaseRequest struct {
	LeaseToken uuid.UUID   `json:"lease_token" binding:"required"`
	SlotIDs    []uuid.UUID `json:"slot_ids" binding:"required,min=1"`
}

type CheckoutRequest struct {
	SlotIDs    []uuid.UUID `json:"slot_ids" binding:"required,min=1"`
	LeaseToken *uuid.UUID  `json:"lease_token,omitempty"`
}

func (r CheckoutRequest) ToInput(studentID uuid.UUID) commands.CheckoutInput {
	return commands.CheckoutInput{StudentID: studentID, SlotIDs: r.SlotIDs, LeaseToken: r.LeaseToken}
}

type ConfirmRequest struct {
	IntentID string `json:"intent_id" binding:"required"`
}

// OmiseWebhookRequest only carries the event id; the event itself is
// re-fetched from Omise.
type OmiseWebhookRequest struct {
	ID  string `json:"id" binding:"required"`
	Key string `json:"key"`
}

type PublishSlotsRequest struct {
	Slots []PublishSlotItem `json:"slots" binding:"required,min=1,dive"`
}

type PublishSlotItem struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
	Date       string    `json:"date" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

const DateLayout = "2006-01-02"

func (r PublishSlotsRequest) ToInput() ([]commands.PublishSlotInput, error) {
	out := make([]commands.PublishSlotInput, 0, len(r.Slots))
	for _, item := range r.Slots {
		date, err := time.Parse(DateLayout, item.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, commands.PublishSlotInput{
			ProviderID: item.ProviderID,
			Date:       date,
			StartTime:  item.StartTime.UTC(),
			EndTime:    item.EndTime.UTC(),
		})
	}
	return out, nil
}
