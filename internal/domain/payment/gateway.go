package payment

import (
	"context"
	"time"
)

// Outcome is what the gateway reports for an intent.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSucceeded, OutcomeFailed, OutcomePending:
		return true
	default:
		return false
	}
}

// Intent is a gateway-issued payment handle. ClientSecret is handed to the
// client to finish the payment (an authorize URI or source id).
type Intent struct {
	ID           string
	ClientSecret string
	Amount       Money
}

// Notification is a gateway report about one intent.
type Notification struct {
	IntentID   string
	Outcome    Outcome
	Amount     Money
	OccurredAt time.Time
	// FailureReason is set by the gateway for failed payments.
	FailureReason string
}

// Gateway is the boundary to the external payment provider.
type Gateway interface {
	CreateIntent(ctx context.Context, amount Money, metadata map[string]string) (Intent, error)
	Lookup(ctx context.Context, intentID string) (Notification, error)
}

// Refunder returns captured money for an intent.
type Refunder interface {
	Refund(ctx context.Context, intentID string, amount Money) error
}
