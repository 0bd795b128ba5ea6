// Package gateway adapts the Omise charges API to the payment gateway port.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/pkg/config"
	"tutor-booking/internal/pkg/errs"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

const eventChargeComplete = "charge.complete"

var (
	ErrCreateIntent   = errs.New("failed to create payment intent")
	ErrLookupIntent   = errs.New("failed to look up payment intent")
	ErrRefund         = errs.New("failed to refund payment")
	ErrUnverified     = errs.New("payment event could not be verified")
	ErrUnexpectedData = errs.New("payment event carries unexpected data")
)

// omiseAPI narrows the Omise client to the calls this adapter makes.
type omiseAPI interface {
	CreateSource(op *operations.CreateSource) (*omise.Source, error)
	CreateCharge(op *operations.CreateCharge) (*omise.Charge, error)
	RetrieveCharge(chargeID string) (*omise.Charge, error)
	CreateRefund(op *operations.CreateRefund) (*omise.Refund, error)
	RetrieveEvent(eventID string) (*omise.Event, error)
}

type clientAPI struct {
	c *omise.Client
}

func (a clientAPI) CreateSource(op *operations.CreateSource) (*omise.Source, error) {
	src := &omise.Source{}
	if err := a.c.Do(src, op); err != nil {
		return nil, err
	}
	return src, nil
}

func (a clientAPI) CreateCharge(op *operations.CreateCharge) (*omise.Charge, error) {
	ch := &omise.Charge{}
	if err := a.c.Do(ch, op); err != nil {
		return nil, err
	}
	return ch, nil
}

func (a clientAPI) RetrieveCharge(chargeID string) (*omise.Charge, error) {
	ch := &omise.Charge{}
	if err := a.c.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return nil, err
	}
	return ch, nil
}

func (a clientAPI) CreateRefund(op *operations.CreateRefund) (*omise.Refund, error) {
	rf := &omise.Refund{}
	if err := a.c.Do(rf, op); err != nil {
		return nil, err
	}
	return rf, nil
}

func (a clientAPI) RetrieveEvent(eventID string) (*omise.Event, error) {
	ev := &omise.Event{}
	if err := a.c.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, err
	}
	return ev, nil
}

type OmiseGateway struct {
	api        omiseAPI
	sourceType string
	returnURI  string
}

var (
	_ payment.Gateway  = (*OmiseGateway)(nil)
	_ payment.Refunder = (*OmiseGateway)(nil)
)

func NewOmiseClient(cfg config.PaymentConfig) (*omise.Client, error) {
	c, err := omise.NewClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create omise client")
	}
	c.SetDebug(false)
	return c, nil
}

func NewOmiseGateway(client *omise.Client, cfg config.PaymentConfig) *OmiseGateway {
	return newOmiseGateway(clientAPI{c: client}, cfg)
}

func newOmiseGateway(api omiseAPI, cfg config.PaymentConfig) *OmiseGateway {
	return &OmiseGateway{
		api:        api,
		sourceType: cfg.SourceType,
		returnURI:  cfg.ReturnURI,
	}
}

// CreateIntent opens an offsite source and charges it. The charge id is the
// intent id; the client finishes payment at the authorize URI.
func (g *OmiseGateway) CreateIntent(ctx context.Context, amount payment.Money, metadata map[string]string) (payment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return payment.Intent{}, err
	}

	src, err := g.api.CreateSource(&operations.CreateSource{
		Type:     g.sourceType,
		Amount:   amount.Amount(),
		Currency: amount.Currency(),
	})
	if err != nil {
		return payment.Intent{}, errs.Mark(errs.Wrap(err, "create source"), ErrCreateIntent)
	}

	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	ch, err := g.api.CreateCharge(&operations.CreateCharge{
		Amount:    amount.Amount(),
		Currency:  amount.Currency(),
		Source:    src.ID,
		ReturnURI: g.returnURI,
		Metadata:  meta,
	})
	if err != nil {
		return payment.Intent{}, errs.Mark(errs.Wrap(err, "create charge"), ErrCreateIntent)
	}

	secret := ch.AuthorizeURI
	if secret == "" {
		secret = src.ID
	}
	return payment.Intent{ID: ch.ID, ClientSecret: secret, Amount: amount}, nil
}

func (g *OmiseGateway) Lookup(ctx context.Context, intentID string) (payment.Notification, error) {
	if err := ctx.Err(); err != nil {
		return payment.Notification{}, err
	}
	ch, err := g.api.RetrieveCharge(intentID)
	if err != nil {
		return payment.Notification{}, errs.Mark(errs.Wrapf(err, "retrieve charge %s", intentID), ErrLookupIntent)
	}
	return ChargeNotification(ch)
}

func (g *OmiseGateway) Refund(ctx context.Context, intentID string, amount payment.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := g.api.CreateRefund(&operations.CreateRefund{
		ChargeID: intentID,
		Amount:   amount.Amount(),
	})
	if err == nil {
		return nil
	}
	// a retried refund is refused once the charge is refunded; that is the
	// outcome we wanted
	if ch, lookupErr := g.api.RetrieveCharge(intentID); lookupErr == nil && ch.Refunded >= amount.Amount() {
		slog.InfoContext(ctx, "charge already refunded", "intent_id", intentID, "refunded", ch.Refunded)
		return nil
	}
	return errs.Mark(errs.Wrapf(err, "refund charge %s", intentID), ErrRefund)
}

// VerifyEvent re-fetches a webhook event from Omise so an unauthenticated
// caller cannot forge outcomes. ok is false for events that are not charge
// completions.
func (g *OmiseGateway) VerifyEvent(ctx context.Context, eventID string) (n payment.Notification, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return payment.Notification{}, false, err
	}
	ev, err := g.api.RetrieveEvent(eventID)
	if err != nil {
		return payment.Notification{}, false, errs.Mark(errs.Wrapf(err, "retrieve event %s", eventID), ErrUnverified)
	}
	if ev.Key != eventChargeComplete {
		return payment.Notification{}, false, nil
	}

	// Event.Data is decoded as a generic map
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return payment.Notification{}, false, errs.Mark(err, ErrUnexpectedData)
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return payment.Notification{}, false, errs.Mark(err, ErrUnexpectedData)
	}

	n, err = ChargeNotification(&ch)
	if err != nil {
		return payment.Notification{}, false, err
	}
	return n, true, nil
}

// ChargeNotification maps an Omise charge onto a gateway notification.
// Reversed and expired charges count as failed.
func ChargeNotification(ch *omise.Charge) (payment.Notification, error) {
	amount, err := payment.NewMoney(ch.Amount, ch.Currency)
	if err != nil {
		return payment.Notification{}, errs.Mark(err, ErrUnexpectedData)
	}

	n := payment.Notification{
		IntentID:   ch.ID,
		Amount:     amount,
		OccurredAt: ch.Created.UTC(),
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now().UTC()
	}

	switch strings.ToLower(string(ch.Status)) {
	case "successful":
		n.Outcome = payment.OutcomeSucceeded
	case "pending":
		n.Outcome = payment.OutcomePending
	default:
		n.Outcome = payment.OutcomeFailed
		if ch.FailureCode != nil {
			n.FailureReason = *ch.FailureCode
		} else {
			n.FailureReason = string(ch.Status)
		}
	}
	return n, nil
}
