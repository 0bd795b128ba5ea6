//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/queries"
	"tutor-booking/tests/common/builder"
	"tutor-booking/tests/common/memstore"
	"tutor-booking/tests/common/paytest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const leaseTTL = 5 * time.Minute

type ReservationCommandsTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memstore.Store
	gateway *paytest.FakeGateway
	clock   *clock.MockClock
	leases  commands.LeaseCommands
	uc      commands.ReservationCommands
	block   []*slot.Slot
	student uuid.UUID
}

func (s *ReservationCommandsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	s.gateway = paytest.NewFakeGateway()
	s.clock = clock.NewMockClock(builder.BaseDay.Add(-24 * time.Hour))
	s.leases = commands.NewLeaseManager(s.store, s.clock, commands.LeaseTTL(leaseTTL))
	s.uc = commands.NewReservationUseCase(
		s.store,
		s.leases,
		s.gateway,
		booking.NewHourlyPriceCalculator(100000, "thb"),
		s.clock,
	)
	s.block = builder.NewSlotBuilder().WithCount(4).BuildBlock()
	s.store.Seed(s.block...)
	s.student = uuid.New()
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsTestSuite))
}

func (s *ReservationCommandsTestSuite) ids(idx ...int) []uuid.UUID {
	out := make([]uuid.UUID, len(idx))
	for i, n := range idx {
		out[i] = s.block[n].ID()
	}
	return out
}

func (s *ReservationCommandsTestSuite) checkout(idx ...int) *commands.CheckoutResult {
	res, err := s.uc.Checkout(s.ctx, commands.CheckoutInput{StudentID: s.student, SlotIDs: s.ids(idx...)})
	s.Require().NoError(err)
	return res
}

// ================================================================================
// Reserve
// ================================================================================

func (s *ReservationCommandsTestSuite) TestReserve() {
	s.Run("leases an unordered contiguous selection", func() {
		res, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(1, 0)})
		s.Require().NoError(err)
		s.Equal(s.ids(0, 1), res.SlotIDs)
		s.Equal(s.clock.Now().Add(leaseTTL), res.LeaseExpiresAt)
		s.True(s.store.Slot(s.block[0].ID()).HeldBy(res.LeaseToken, s.clock.Now()))
	})

	s.Run("rejects a gap", func() {
		_, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(0, 2)})
		s.True(errs.Is(err, commands.ErrInvalidSelection))
	})

	s.Run("rejects an empty selection", func() {
		_, err := s.uc.Reserve(s.ctx, commands.ReserveInput{})
		s.True(errs.Is(err, commands.ErrInvalidSelection))
	})

	s.Run("rejects unknown slots", func() {
		_, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: []uuid.UUID{uuid.New()}})
		s.True(errs.Is(err, commands.ErrSlotNotFound))
	})

	s.Run("another student's lease does not block", func() {
		first, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(2)})
		s.Require().NoError(err)
		second, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(2)})
		s.Require().NoError(err)
		s.NotEqual(first.LeaseToken, second.LeaseToken)
		s.True(s.store.Slot(s.block[2].ID()).HeldBy(second.LeaseToken, s.clock.Now()))
	})

	s.Run("keeps the caller's token", func() {
		token := uuid.New()
		res, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(3), LeaseToken: &token})
		s.Require().NoError(err)
		s.Equal(token, res.LeaseToken)
	})
}

func (s *ReservationCommandsTestSuite) TestReserveBookedSlot() {
	res := s.checkout(0)
	_, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(res.IntentID))
	s.Require().NoError(err)

	_, err = s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(0, 1)})
	s.True(errs.Is(err, commands.ErrSlotUnavailable))
}

// ================================================================================
// Checkout
// ================================================================================

func (s *ReservationCommandsTestSuite) TestCheckout() {
	s.Run("creates an attempt awaiting payment", func() {
		res := s.checkout(0, 1)
		s.Equal(int64(100000), res.Amount.Amount())
		s.Equal("thb", res.Amount.Currency())
		s.NotEmpty(res.ClientSecret)

		attempt := s.store.Checkout(res.IntentID)
		s.Require().NotNil(attempt)
		s.Equal(checkout.StateAwaitingPayment, attempt.State())
		s.Equal(s.ids(0, 1), attempt.SlotIDs())
		s.Equal(res.LeaseToken, attempt.Lease().Token())
		s.Equal(s.student.String(), s.gateway.Metadata[res.IntentID]["student_id"])
	})

	s.Run("gateway failure leaves no attempt", func() {
		s.gateway.CreateErr = errors.New("omise down")
		defer func() { s.gateway.CreateErr = nil }()

		_, err := s.uc.Checkout(s.ctx, commands.CheckoutInput{StudentID: s.student, SlotIDs: s.ids(2)})
		s.True(errs.Is(err, commands.ErrGatewayFailure))
	})
}

// ================================================================================
// Settlement
// ================================================================================

func (s *ReservationCommandsTestSuite) TestSettleSuccess() {
	res := s.checkout(0, 1)

	out, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(res.IntentID))
	s.Require().NoError(err)
	s.Equal(checkout.StateCommitted, out.State)
	s.Require().NotNil(out.BookingID)
	s.False(out.Replayed)

	bookings := s.store.Bookings()
	s.Require().Len(bookings, 1)
	b := bookings[0]
	s.Equal(*out.BookingID, b.ID())
	s.Equal(booking.StatusConfirmed, b.Status())
	s.Equal(s.ids(0, 1), b.SlotIDs())

	for _, id := range s.ids(0, 1) {
		sl := s.store.Slot(id)
		s.True(sl.IsBooked())
		s.Equal(b.ID(), *sl.BookingID())
	}
	s.True(s.store.Slot(s.block[2].ID()).IsFree())

	s.Len(s.store.Payments(), 1)
	s.Len(s.store.OutboxOfKind(booking.EventConfirmed), 1)
	s.Empty(s.store.OutboxOfKind(payment.EventRefundRequested))
}

func (s *ReservationCommandsTestSuite) TestDuplicateNotificationIsIdempotent() {
	res := s.checkout(0)
	n := s.gateway.Pay(res.IntentID)

	first, err := s.uc.HandlePaymentNotification(s.ctx, n)
	s.Require().NoError(err)
	second, err := s.uc.HandlePaymentNotification(s.ctx, n)
	s.Require().NoError(err)

	s.True(second.Replayed)
	s.Equal(first.BookingID, second.BookingID)
	s.Len(s.store.Bookings(), 1)
	s.Len(s.store.Payments(), 1)
	s.Len(s.store.OutboxOfKind(booking.EventConfirmed), 1)
}

func (s *ReservationCommandsTestSuite) TestLosingIntentIsRefundedOnce() {
	winner := s.checkout(0, 1)
	loser := s.checkout(1, 2)

	_, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(winner.IntentID))
	s.Require().NoError(err)

	n := s.gateway.Pay(loser.IntentID)
	out, err := s.uc.HandlePaymentNotification(s.ctx, n)
	s.Require().NoError(err)
	s.Equal(checkout.StateRejected, out.State)
	s.Equal(checkout.ReasonSlotUnavailable, *out.RejectReason)

	// no partial booking of the slot the winner did not take
	s.True(s.store.Slot(s.block[2].ID()).IsFree())

	_, err = s.uc.HandlePaymentNotification(s.ctx, n)
	s.Require().NoError(err)

	refunds := s.store.OutboxOfKind(payment.EventRefundRequested)
	s.Require().Len(refunds, 1)
	s.Equal(loser.IntentID, refunds[0].DedupeKey)
	s.Len(s.store.Bookings(), 1)
}

func (s *ReservationCommandsTestSuite) TestConcurrentCommitsBookOnce() {
	const contenders = 12
	intents := make([]string, contenders)
	for i := range intents {
		intents[i] = s.checkout(0, 1).IntentID
	}

	var wg sync.WaitGroup
	results := make([]*commands.SettlementResult, contenders)
	for i, id := range intents {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(id))
			s.NoError(err)
			results[i] = out
		}()
	}
	wg.Wait()

	committed := 0
	for _, r := range results {
		s.Require().NotNil(r)
		switch r.State {
		case checkout.StateCommitted:
			committed++
		case checkout.StateRejected:
			s.Equal(checkout.ReasonSlotUnavailable, *r.RejectReason)
		default:
			s.Failf("unexpected state", "%s", r.State)
		}
	}
	s.Equal(1, committed)
	s.Len(s.store.Bookings(), 1)
	s.Len(s.store.OutboxOfKind(payment.EventRefundRequested), contenders-1)
}

func (s *ReservationCommandsTestSuite) TestFailedPayment() {
	res := s.checkout(0)

	out, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Fail(res.IntentID))
	s.Require().NoError(err)
	s.Equal(checkout.StateRejected, out.State)
	s.Equal(checkout.ReasonPaymentFailed, *out.RejectReason)
	s.True(s.store.Slot(s.block[0].ID()).IsFree())
	s.Empty(s.store.OutboxOfKind(payment.EventRefundRequested))
	s.Empty(s.store.Bookings())
}

func (s *ReservationCommandsTestSuite) TestAmountMismatch() {
	res := s.checkout(0)

	out, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.PayAmount(res.IntentID, payment.MustMoney(1, "thb")))
	s.Require().NoError(err)
	s.Equal(checkout.ReasonAmountMismatch, *out.RejectReason)
	s.True(s.store.Slot(s.block[0].ID()).IsFree())
	s.Len(s.store.OutboxOfKind(payment.EventRefundRequested), 1)
}

func (s *ReservationCommandsTestSuite) TestPendingNotificationChangesNothing() {
	res := s.checkout(0)

	out, err := s.uc.HandlePaymentNotification(s.ctx, payment.Notification{IntentID: res.IntentID, Outcome: payment.OutcomePending})
	s.Require().NoError(err)
	s.Equal(checkout.StateAwaitingPayment, out.State)
	s.False(out.IsFinal())
}

func (s *ReservationCommandsTestSuite) TestLeaseExpiryDoesNotBlockCommit() {
	res := s.checkout(0)
	s.clock.Add(2 * leaseTTL)

	expired, err := s.uc.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, expired)
	s.Equal(checkout.StateExpired, s.store.Checkout(res.IntentID).State())

	out, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(res.IntentID))
	s.Require().NoError(err)
	s.Equal(checkout.StateCommitted, out.State)
}

func (s *ReservationCommandsTestSuite) available() []uuid.UUID {
	q := queries.NewAvailabilityQueries(s.store, s.clock)
	var ids []uuid.UUID
	for sl, err := range q.List(s.ctx, s.block[0].ProviderID(), builder.BaseDay) {
		s.Require().NoError(err)
		ids = append(ids, sl.ID)
	}
	return ids
}

// Student A checks out and walks away; B takes the slots after A's lease
// lapses, and A's payment arriving afterwards loses.
func (s *ReservationCommandsTestSuite) TestAbandonedCheckoutLosesToLaterStudent() {
	studentA, studentB := s.student, uuid.New()

	a := s.checkout(0, 1)
	s.Equal(s.ids(2, 3), s.available(), "A's lease hides the pair")

	s.clock.Add(leaseTTL)
	s.Equal(s.ids(0, 1, 2, 3), s.available(), "the pair reappears once A's lease lapses")

	held, err := s.uc.Reserve(s.ctx, commands.ReserveInput{SlotIDs: s.ids(0, 1)})
	s.Require().NoError(err)
	b, err := s.uc.Checkout(s.ctx, commands.CheckoutInput{StudentID: studentB, SlotIDs: s.ids(0, 1), LeaseToken: &held.LeaseToken})
	s.Require().NoError(err)

	committed, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(b.IntentID))
	s.Require().NoError(err)
	s.Require().Equal(checkout.StateCommitted, committed.State)
	s.Equal(s.ids(2, 3), s.available(), "B's booking keeps the pair out of availability")

	late, err := s.uc.HandlePaymentNotification(s.ctx, s.gateway.Pay(a.IntentID))
	s.Require().NoError(err)
	s.Equal(checkout.StateRejected, late.State)
	s.Require().NotNil(late.RejectReason)
	s.Equal(checkout.ReasonSlotUnavailable, *late.RejectReason)
	s.Nil(late.BookingID)

	refunds := s.store.OutboxOfKind(payment.EventRefundRequested)
	s.Require().Len(refunds, 1)
	s.Equal(a.IntentID, refunds[0].DedupeKey)

	bookings := s.store.Bookings()
	s.Require().Len(bookings, 1)
	s.Equal(studentB, bookings[0].StudentID())
	s.NotEqual(studentA, bookings[0].StudentID())
	for _, id := range s.ids(0, 1) {
		s.Equal(*committed.BookingID, *s.store.Slot(id).BookingID())
	}
}

func (s *ReservationCommandsTestSuite) TestExtendedLeaseDelaysExpiry() {
	res := s.checkout(0, 1)

	s.clock.Add(leaseTTL - time.Minute)
	extended, err := s.leases.Extend(s.ctx, res.LeaseToken, s.ids(0, 1))
	s.Require().NoError(err)
	s.Equal(extended.ExpiresAt(), s.store.Checkout(res.IntentID).Lease().ExpiresAt())

	// past the original deadline, inside the extended one
	s.clock.Add(2 * time.Minute)
	n, err := s.uc.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
	s.Equal(checkout.StateAwaitingPayment, s.store.Checkout(res.IntentID).State())

	s.clock.Set(extended.ExpiresAt())
	n, err = s.uc.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(checkout.StateExpired, s.store.Checkout(res.IntentID).State())
}

func (s *ReservationCommandsTestSuite) TestExpireLapsedWaitsForTTL() {
	res := s.checkout(0)

	s.clock.Add(leaseTTL - time.Second)
	n, err := s.uc.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	s.clock.Add(time.Second)
	n, err = s.uc.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(checkout.StateExpired, s.store.Checkout(res.IntentID).State())
}

func (s *ReservationCommandsTestSuite) TestUnknownIntent() {
	_, err := s.uc.HandlePaymentNotification(s.ctx, payment.Notification{IntentID: "chrg_missing", Outcome: payment.OutcomeSucceeded})
	s.True(errs.Is(err, commands.ErrCheckoutNotFound))

	_, err = s.uc.Confirm(s.ctx, "chrg_missing")
	s.True(errs.Is(err, commands.ErrCheckoutNotFound))
}

func (s *ReservationCommandsTestSuite) TestInvalidNotification() {
	_, err := s.uc.HandlePaymentNotification(s.ctx, payment.Notification{Outcome: payment.OutcomeSucceeded})
	s.True(errs.Is(err, commands.ErrInvalidNotification))
}

// ================================================================================
// Confirm
// ================================================================================

func (s *ReservationCommandsTestSuite) TestConfirm() {
	res := s.checkout(0, 1)

	s.Run("pending payment stays open", func() {
		out, err := s.uc.Confirm(s.ctx, res.IntentID)
		s.Require().NoError(err)
		s.Equal(checkout.StateAwaitingPayment, out.State)
	})

	s.Run("paid intent commits", func() {
		s.gateway.Pay(res.IntentID)
		out, err := s.uc.Confirm(s.ctx, res.IntentID)
		s.Require().NoError(err)
		s.Equal(checkout.StateCommitted, out.State)
	})

	s.Run("committed intent replays without the gateway", func() {
		s.gateway.LookupErr = errors.New("should not be called")
		defer func() { s.gateway.LookupErr = nil }()

		out, err := s.uc.Confirm(s.ctx, res.IntentID)
		s.Require().NoError(err)
		s.True(out.Replayed)
	})
}

func (s *ReservationCommandsTestSuite) TestConfirmGatewayFailure() {
	res := s.checkout(0)
	s.gateway.LookupErr = errors.New("timeout")

	_, err := s.uc.Confirm(s.ctx, res.IntentID)
	s.True(errs.Is(err, commands.ErrGatewayFailure))
	s.Equal(checkout.StateAwaitingPayment, s.store.Checkout(res.IntentID).State())
}
