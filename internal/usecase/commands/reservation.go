package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidSelection        = errs.New("invalid slot selection")
	ErrSlotNotFound            = errs.New("slot not found")
	ErrSlotUnavailable         = errs.New("slot unavailable")
	ErrGatewayFailure          = errs.New("payment gateway failure")
	ErrCheckoutNotFound        = errs.New("checkout not found")
	ErrInvalidNotification     = errs.New("invalid payment notification")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const expireBatchSize int32 = 100

type ReserveInput struct {
	SlotIDs    []uuid.UUID
	LeaseToken *uuid.UUID
}

type ReserveResult struct {
	SlotIDs        []uuid.UUID
	LeaseToken     uuid.UUID
	LeaseExpiresAt time.Time
}

type CheckoutInput struct {
	StudentID  uuid.UUID
	SlotIDs    []uuid.UUID
	LeaseToken *uuid.UUID
}

type CheckoutResult struct {
	IntentID       string
	ClientSecret   string
	Amount         payment.Money
	SlotIDs        []uuid.UUID
	LeaseToken     uuid.UUID
	LeaseExpiresAt time.Time
}

// SettlementResult describes where an attempt ended up after a payment
// notification. Replayed is set when the attempt was already final.
type SettlementResult struct {
	IntentID     string
	State        checkout.State
	RejectReason *checkout.RejectReason
	BookingID    *uuid.UUID
	Replayed     bool
}

func (r *SettlementResult) IsFinal() bool {
	return r.State.IsTerminal()
}

type ReservationCommands interface {
	Reserve(ctx context.Context, in ReserveInput) (*ReserveResult, error)
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	// Confirm asks the gateway for the intent's outcome and settles it.
	Confirm(ctx context.Context, intentID string) (*SettlementResult, error)
	HandlePaymentNotification(ctx context.Context, n payment.Notification) (*SettlementResult, error)
	ExpireLapsed(ctx context.Context) (int, error)
}

type reservationUseCaseImpl struct {
	uow     shared.UnitOfWork
	leases  LeaseCommands
	gateway payment.Gateway
	pricer  booking.PriceCalculator
	clock   clock.Clock
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	leases LeaseCommands,
	gateway payment.Gateway,
	pricer booking.PriceCalculator,
	clk clock.Clock,
) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:     uow,
		leases:  leases,
		gateway: gateway,
		pricer:  pricer,
		clock:   clk,
	}
}

func (r *reservationUseCaseImpl) Reserve(ctx context.Context, in ReserveInput) (*ReserveResult, error) {
	ordered, err := r.loadSelection(ctx, in.SlotIDs)
	if err != nil {
		return nil, err
	}

	ids := slot.IDs(ordered)
	lease, err := r.leases.Acquire(ctx, ids, in.LeaseToken)
	if err != nil {
		return nil, err
	}

	return &ReserveResult{
		SlotIDs:        ids,
		LeaseToken:     lease.Token(),
		LeaseExpiresAt: lease.ExpiresAt(),
	}, nil
}

func (r *reservationUseCaseImpl) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	ordered, err := r.loadSelection(ctx, in.SlotIDs)
	if err != nil {
		return nil, err
	}

	ids := slot.IDs(ordered)
	total := ordered[len(ordered)-1].EndTime().Sub(ordered[0].StartTime())
	price := r.pricer.Price(total)

	attempt := checkout.Initiate(in.StudentID, ordered[0].ProviderID(), ids, price, r.clock.Now())

	lease, err := r.leases.Acquire(ctx, ids, in.LeaseToken)
	if err != nil {
		return nil, err
	}
	if err = attempt.MarkLeased(lease, r.clock.Now()); err != nil {
		return nil, err
	}

	intent, err := r.gateway.CreateIntent(ctx, price, map[string]string{
		"student_id":  in.StudentID.String(),
		"provider_id": attempt.ProviderID().String(),
		"slot_ids":    joinIDs(ids),
	})
	if err != nil {
		slog.WarnContext(ctx, "payment intent creation failed",
			"student_id", in.StudentID,
			"error", err.Error())
		return nil, errs.Mark(err, ErrGatewayFailure)
	}
	if err = attempt.AwaitPayment(intent.ID, r.clock.Now()); err != nil {
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Checkouts().Create(ctx, attempt)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	slog.InfoContext(ctx, "checkout awaiting payment",
		"intent_id", intent.ID,
		"student_id", in.StudentID,
		"slot_count", len(ids),
		"amount", price.Amount())

	return &CheckoutResult{
		IntentID:       intent.ID,
		ClientSecret:   intent.ClientSecret,
		Amount:         price,
		SlotIDs:        ids,
		LeaseToken:     lease.Token(),
		LeaseExpiresAt: lease.ExpiresAt(),
	}, nil
}

func (r *reservationUseCaseImpl) Confirm(ctx context.Context, intentID string) (*SettlementResult, error) {
	attempt, err := r.uow.CommandReads().CheckoutByIntentID(ctx, intentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if attempt.IsTerminal() {
		return replayed(attempt), nil
	}

	n, err := r.gateway.Lookup(ctx, intentID)
	if err != nil {
		return nil, errs.Mark(err, ErrGatewayFailure)
	}
	if n.IntentID == "" {
		n.IntentID = intentID
	}
	if n.IntentID != intentID {
		return nil, ErrInvalidNotification
	}
	return r.HandlePaymentNotification(ctx, n)
}

// HandlePaymentNotification settles an attempt exactly once. Every write for
// the decision (booking, payment record, slot status, attempt state, outbox)
// lands in one transaction, and the attempt row lock serializes duplicate
// deliveries of the same notification.
func (r *reservationUseCaseImpl) HandlePaymentNotification(ctx context.Context, n payment.Notification) (*SettlementResult, error) {
	if n.IntentID == "" || !n.Outcome.IsValid() {
		return nil, ErrInvalidNotification
	}

	var result *SettlementResult
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		attempt, err := tx.Checkouts().FindByIntentIDForUpdate(ctx, n.IntentID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCheckoutNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if attempt.IsTerminal() {
			result = replayed(attempt)
			return nil
		}

		now := r.clock.Now()
		switch n.Outcome {
		case payment.OutcomePending:
			result = settlementOf(attempt)
			return nil
		case payment.OutcomeFailed:
			err = r.reject(ctx, tx, attempt, checkout.ReasonPaymentFailed, n, now)
		default:
			if !attempt.MatchesPayment(n.Amount) {
				slog.WarnContext(ctx, "payment amount mismatch",
					"intent_id", n.IntentID,
					"expected", attempt.Amount().Amount(),
					"paid", n.Amount.Amount(),
					"currency", n.Amount.Currency())
				err = r.reject(ctx, tx, attempt, checkout.ReasonAmountMismatch, n, now)
			} else {
				err = r.commit(ctx, tx, attempt, n, now)
			}
		}
		if err != nil {
			return err
		}
		result = settlementOf(attempt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment notification handled",
		"intent_id", n.IntentID,
		"outcome", string(n.Outcome),
		"state", result.State.String(),
		"replayed", result.Replayed)
	return result, nil
}

// ExpireLapsed moves awaiting attempts with a lapsed lease to EXPIRED.
func (r *reservationUseCaseImpl) ExpireLapsed(ctx context.Context) (int, error) {
	expired := 0
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := r.clock.Now()
		lapsed, err := tx.Checkouts().ListLapsed(ctx, now, expireBatchSize)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		for _, a := range lapsed {
			if err := a.Expire(now); err != nil {
				continue
			}
			if err := tx.Checkouts().Update(ctx, a); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func (r *reservationUseCaseImpl) commit(ctx context.Context, tx shared.Tx, attempt *checkout.Attempt, n payment.Notification, now time.Time) error {
	ids := attempt.SlotIDs()

	slots, err := tx.Slots().GetMany(ctx, ids)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return r.reject(ctx, tx, attempt, checkout.ReasonSlotUnavailable, n, now)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	for _, s := range slots {
		if !s.IsFree() {
			return r.reject(ctx, tx, attempt, checkout.ReasonSlotUnavailable, n, now)
		}
	}

	b, err := booking.NewBooking(attempt.StudentID(), attempt.ProviderID(), ids, n.Amount, attempt.IntentID(), now)
	if err != nil {
		return err
	}

	if err = tx.Slots().MarkBooked(ctx, ids, b.ID()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			slog.InfoContext(ctx, "slots taken by a concurrent commit",
				"intent_id", attempt.IntentID())
			return r.reject(ctx, tx, attempt, checkout.ReasonSlotUnavailable, n, now)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err = b.Confirm(now); err != nil {
		return err
	}
	if err = tx.Bookings().Create(ctx, b); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err = tx.Payments().Create(ctx, payment.NewRecord(b.ID(), n.Amount, attempt.IntentID(), now)); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err = attempt.Commit(b.ID(), now); err != nil {
		return err
	}
	if err = tx.Checkouts().Update(ctx, attempt); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return enqueue(ctx, tx, booking.EventConfirmed, b.ID().String(), booking.NewConfirmed(b), now)
}

// reject records the final decision and, when money may have been captured,
// queues a refund keyed by the intent so it is requested at most once.
func (r *reservationUseCaseImpl) reject(
	ctx context.Context,
	tx shared.Tx,
	attempt *checkout.Attempt,
	reason checkout.RejectReason,
	n payment.Notification,
	now time.Time,
) error {
	if err := attempt.Reject(reason, now); err != nil {
		return err
	}
	if err := tx.Checkouts().Update(ctx, attempt); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !reason.RequiresRefund() {
		return nil
	}

	refund := payment.RefundRequested{
		IntentID:    attempt.IntentID(),
		StudentID:   attempt.StudentID(),
		SlotIDs:     attempt.SlotIDs(),
		Amount:      n.Amount.Amount(),
		Currency:    n.Amount.Currency(),
		Reason:      reason.String(),
		RequestedAt: now,
	}
	return enqueue(ctx, tx, payment.EventRefundRequested, attempt.IntentID(), refund, now)
}

// loadSelection returns the requested slots ordered by start time after
// checking they exist, form one block, and none is already booked.
func (r *reservationUseCaseImpl) loadSelection(ctx context.Context, ids []uuid.UUID) ([]*slot.Slot, error) {
	if err := slot.ValidateIDs(ids); err != nil {
		return nil, errs.Mark(err, ErrInvalidSelection)
	}

	slots, err := r.uow.CommandReads().SlotsByIDs(ctx, ids)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if len(slots) != len(ids) {
		return nil, ErrSlotNotFound
	}

	ordered, err := slot.ValidateContiguous(slots)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidSelection)
	}
	for _, s := range ordered {
		if !s.IsFree() {
			return nil, ErrSlotUnavailable
		}
	}
	return ordered, nil
}

func enqueue(ctx context.Context, tx shared.Tx, kind, dedupeKey string, event any, now time.Time) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal outbox event")
	}
	if err = tx.Outbox().Enqueue(ctx, kind, dedupeKey, payload, now); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func settlementOf(a *checkout.Attempt) *SettlementResult {
	return &SettlementResult{
		IntentID:     a.IntentID(),
		State:        a.State(),
		RejectReason: a.RejectReason(),
		BookingID:    a.BookingID(),
	}
}

func replayed(a *checkout.Attempt) *SettlementResult {
	res := settlementOf(a)
	res.Replayed = true
	return res
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
