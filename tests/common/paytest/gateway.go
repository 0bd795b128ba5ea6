//go:build unit || e2e

// Package paytest provides an in-process payment gateway for tests.
package paytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tutor-booking/internal/domain/payment"
)

type FakeGateway struct {
	mu        sync.Mutex
	seq       int
	intents   map[string]payment.Intent
	outcomes  map[string]payment.Notification
	Metadata  map[string]map[string]string
	CreateErr error
	LookupErr error
	RefundErr error
	refunds   map[string]payment.Money
	events    map[string]string
}

var (
	_ payment.Gateway  = (*FakeGateway)(nil)
	_ payment.Refunder = (*FakeGateway)(nil)
)

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		intents:  map[string]payment.Intent{},
		outcomes: map[string]payment.Notification{},
		Metadata: map[string]map[string]string{},
		refunds:  map[string]payment.Money{},
		events:   map[string]string{},
	}
}

func (g *FakeGateway) CreateIntent(_ context.Context, amount payment.Money, metadata map[string]string) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateErr != nil {
		return payment.Intent{}, g.CreateErr
	}
	g.seq++
	id := fmt.Sprintf("chrg_test_%d", g.seq)
	intent := payment.Intent{ID: id, ClientSecret: "src_test_" + id, Amount: amount}
	g.intents[id] = intent
	g.Metadata[id] = metadata
	return intent, nil
}

// Lookup reports pending until Pay or Fail is called for the intent.
func (g *FakeGateway) Lookup(_ context.Context, intentID string) (payment.Notification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.LookupErr != nil {
		return payment.Notification{}, g.LookupErr
	}
	if n, ok := g.outcomes[intentID]; ok {
		return n, nil
	}
	intent, ok := g.intents[intentID]
	if !ok {
		return payment.Notification{}, fmt.Errorf("unknown intent %s", intentID)
	}
	return payment.Notification{IntentID: intentID, Outcome: payment.OutcomePending, Amount: intent.Amount}, nil
}

// Pay marks the intent as paid in full and returns the matching notification.
func (g *FakeGateway) Pay(intentID string) payment.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := payment.Notification{
		IntentID:   intentID,
		Outcome:    payment.OutcomeSucceeded,
		Amount:     g.intents[intentID].Amount,
		OccurredAt: time.Now(),
	}
	g.outcomes[intentID] = n
	return n
}

func (g *FakeGateway) PayAmount(intentID string, amount payment.Money) payment.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := payment.Notification{IntentID: intentID, Outcome: payment.OutcomeSucceeded, Amount: amount, OccurredAt: time.Now()}
	g.outcomes[intentID] = n
	return n
}

func (g *FakeGateway) Fail(intentID string) payment.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := payment.Notification{
		IntentID:      intentID,
		Outcome:       payment.OutcomeFailed,
		Amount:        g.intents[intentID].Amount,
		OccurredAt:    time.Now(),
		FailureReason: "insufficient_fund",
	}
	g.outcomes[intentID] = n
	return n
}

func (g *FakeGateway) Refund(_ context.Context, intentID string, amount payment.Money) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.RefundErr != nil {
		return g.RefundErr
	}
	g.refunds[intentID] = amount
	return nil
}

// Refunded reports the amount refunded for the intent, if any.
func (g *FakeGateway) Refunded(intentID string) (payment.Money, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.refunds[intentID]
	return m, ok
}

// EmitEvent records a webhook event for the intent and returns its id.
func (g *FakeGateway) EmitEvent(intentID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("evnt_test_%d", len(g.events)+1)
	g.events[id] = intentID
	return id
}

// VerifyEvent resolves events created by EmitEvent. ok is false while the
// intent has no outcome yet.
func (g *FakeGateway) VerifyEvent(_ context.Context, eventID string) (payment.Notification, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intentID, found := g.events[eventID]
	if !found {
		return payment.Notification{}, false, fmt.Errorf("unknown event %s", eventID)
	}
	n, ok := g.outcomes[intentID]
	return n, ok, nil
}
