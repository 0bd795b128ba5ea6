// Package worker runs the background loops: the outbox relay, the checkout
// expiry sweep and the payment result consumer.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/shared"
)

type EventPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}

// OutboxRelay drains pending outbox events to the message broker. Delivery is
// at least once; the message id is the outbox row id.
type OutboxRelay struct {
	uow       shared.UnitOfWork
	publisher EventPublisher
	refunder  payment.Refunder
	clock     clock.Clock
	batchSize int32
}

func NewOutboxRelay(uow shared.UnitOfWork, publisher EventPublisher, refunder payment.Refunder, clk clock.Clock, batchSize int32) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		uow:       uow,
		publisher: publisher,
		refunder:  refunder,
		clock:     clk,
		batchSize: batchSize,
	}
}

// RunOnce relays one batch and reports how many events were published.
// Refund events run their gateway refund first; the refund is recorded on the
// row so a later retry after a publish failure only re-publishes.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	published := 0
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		published = 0
		events, err := tx.Outbox().ClaimPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if r.needsRefund(ev) {
				if err := r.refund(ctx, ev.Payload); err != nil {
					if err := r.markFailed(ctx, tx, ev, err); err != nil {
						return err
					}
					continue
				}
				if err := tx.Outbox().MarkRefunded(ctx, ev.ID, r.clock.Now()); err != nil {
					return err
				}
			}
			if err := r.publisher.Publish(ctx, ev.Kind, ev.ID.String(), ev.Payload); err != nil {
				if err := r.markFailed(ctx, tx, ev, err); err != nil {
					return err
				}
				continue
			}
			if err := tx.Outbox().MarkPublished(ctx, ev.ID, r.clock.Now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if published > 0 {
		slog.InfoContext(ctx, "outbox relayed", "published", published)
	}
	return published, nil
}

func (r *OutboxRelay) needsRefund(ev shared.OutboxEvent) bool {
	return ev.Kind == payment.EventRefundRequested && r.refunder != nil && ev.RefundedAt == nil
}

func (r *OutboxRelay) markFailed(ctx context.Context, tx shared.Tx, ev shared.OutboxEvent, cause error) error {
	slog.WarnContext(ctx, "outbox delivery failed",
		"event_id", ev.ID,
		"kind", ev.Kind,
		"attempts", ev.Attempts+1,
		"error", cause.Error())
	return tx.Outbox().MarkFailed(ctx, ev.ID, cause.Error())
}

func (r *OutboxRelay) refund(ctx context.Context, payload []byte) error {
	var req payment.RefundRequested
	if err := json.Unmarshal(payload, &req); err != nil {
		return errs.Wrap(err, "decode refund request")
	}
	amount, err := payment.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return errs.Wrap(err, "refund amount")
	}
	if amount.IsZero() {
		return nil
	}
	return r.refunder.Refund(ctx, req.IntentID, amount)
}
