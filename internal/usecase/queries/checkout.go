package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CheckoutView struct {
	IntentID       string      `json:"intent_id"`
	StudentID      uuid.UUID   `json:"student_id"`
	ProviderID     uuid.UUID   `json:"provider_id"`
	SlotIDs        []uuid.UUID `json:"slot_ids"`
	AmountCents    int64       `json:"amount_cents"`
	Currency       string      `json:"currency"`
	State          string      `json:"state"`
	RejectReason   *string     `json:"reject_reason,omitempty"`
	BookingID      *uuid.UUID  `json:"booking_id,omitempty"`
	LeaseExpiresAt *time.Time  `json:"lease_expires_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type CheckoutQueries interface {
	GetByIntentID(ctx context.Context, actorID uuid.UUID, intentID string) (*CheckoutView, error)
}

type CheckoutViewRepo interface {
	FindByIntentID(ctx context.Context, intentID string) (*CheckoutView, error)
}

type checkoutQueriesImpl struct {
	repo CheckoutViewRepo
}

func NewCheckoutQueries(repo CheckoutViewRepo) CheckoutQueries {
	return &checkoutQueriesImpl{repo: repo}
}

func (q *checkoutQueriesImpl) GetByIntentID(ctx context.Context, actorID uuid.UUID, intentID string) (*CheckoutView, error) {
	view, err := q.repo.FindByIntentID(ctx, intentID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if view.StudentID != actorID {
		return nil, ErrNotVisible
	}
	return view, nil
}
