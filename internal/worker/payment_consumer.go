package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/commands"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingPaymentPaid   = "payment.paid"
	RoutingPaymentFailed = "payment.failed"
)

// PaymentEnvelope is the message published by the payment service.
type PaymentEnvelope struct {
	Event      string      `json:"event"`
	Version    int         `json:"version"`
	OccurredAt string      `json:"occurred_at"`
	Data       PaymentData `json:"data"`
}

type PaymentData struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason,omitempty"`
}

type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type PaymentConsumer struct {
	source       DeliverySource
	reservations commands.ReservationCommands
}

func NewPaymentConsumer(source DeliverySource, reservations commands.ReservationCommands) *PaymentConsumer {
	return &PaymentConsumer{source: source, reservations: reservations}
}

// Run consumes until ctx is done or the delivery channel closes.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := c.source.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			c.Handle(ctx, d)
		}
		slog.Info("payment consumer stopped")
	}()
	return nil
}

// Handle settles one delivery. Malformed and unknown messages are dropped;
// transient failures are requeued.
func (c *PaymentConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	n, err := decodeNotification(d.RoutingKey, d.Body)
	if err != nil {
		slog.WarnContext(ctx, "dropping payment message",
			"routing_key", d.RoutingKey,
			"error", err.Error())
		_ = d.Nack(false, false)
		return
	}

	res, err := c.reservations.HandlePaymentNotification(ctx, n)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "payment message settled",
			"intent_id", n.IntentID,
			"state", res.State.String())
		_ = d.Ack(false)
	case errs.Is(err, commands.ErrCheckoutNotFound), errs.Is(err, commands.ErrInvalidNotification):
		slog.WarnContext(ctx, "payment message for unknown checkout",
			"intent_id", n.IntentID,
			"error", err.Error())
		_ = d.Ack(false)
	default:
		slog.ErrorContext(ctx, "payment message settlement failed",
			"intent_id", n.IntentID,
			"error", err.Error())
		_ = d.Nack(false, true)
	}
}

var errUnknownRoutingKey = errs.New("unknown routing key")

func decodeNotification(routingKey string, body []byte) (payment.Notification, error) {
	var env PaymentEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return payment.Notification{}, errs.Wrap(err, "decode payment envelope")
	}

	n := payment.Notification{IntentID: env.Data.PaymentID}
	if t, err := time.Parse(time.RFC3339, env.OccurredAt); err == nil {
		n.OccurredAt = t
	}

	switch routingKey {
	case RoutingPaymentPaid:
		amount, err := payment.NewMoney(env.Data.Amount, env.Data.Currency)
		if err != nil {
			return payment.Notification{}, errs.Wrap(err, "payment amount")
		}
		n.Outcome = payment.OutcomeSucceeded
		n.Amount = amount
	case RoutingPaymentFailed:
		n.Outcome = payment.OutcomeFailed
		n.FailureReason = env.Data.Reason
		if amount, err := payment.NewMoney(env.Data.Amount, env.Data.Currency); err == nil {
			n.Amount = amount
		}
	default:
		return payment.Notification{}, errs.Wrapf(errUnknownRoutingKey, "%q", routingKey)
	}
	return n, nil
}
