//go:build e2e

package reservation_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/handler/dto/request"
	"tutor-booking/internal/handler/dto/response"
	"tutor-booking/internal/pkg/jwt"
	"tutor-booking/internal/usecase/queries"
	"tutor-booking/tests/common/authtest"
	"tutor-booking/tests/common/builder"
	"tutor-booking/tests/common/dbtest"
	"tutor-booking/tests/common/httptest"
	"tutor-booking/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	availabilityURL = "/api/providers/%s/availability?date=%s"
	checkoutURL     = "/api/reservations/checkout"
	confirmURL      = "/api/reservations/confirm"
	checkoutViewURL = "/api/reservations/checkouts/%s"
	reserveURL      = "/api/reservations/reserve"
	bookingsURL     = "/api/bookings"
	publishURL      = "/api/internal/slots"
	webhookURL      = "/api/webhooks/omise"
)

type ReservationSuite struct {
	e2e.SharedSuite
	tokens *authtest.JWTHelper
}

func (s *ReservationSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.tokens = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *ReservationSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestReservationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReservationSuite))
}

// publishDay feeds n back-to-back hour slots from 09:00 and returns their ids in order.
func (s *ReservationSuite) publishDay(providerID uuid.UUID, n int) []uuid.UUID {
	t := s.T()
	day := builder.BaseDay
	items := make([]request.PublishSlotItem, 0, n)
	for i := range n {
		start := day.Add(time.Duration(9+i) * time.Hour)
		items = append(items, request.PublishSlotItem{
			ProviderID: providerID,
			Date:       day.Format(request.DateLayout),
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
		})
	}
	service := s.tokens.GenerateToken(t, uuid.New(), jwt.RoleService)

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, publishURL, request.PublishSlotsRequest{Slots: items}, service)
	var published response.PublishSlotsResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &published)
	require.Equal(t, int64(n), published.Inserted)

	avail := s.availability(providerID)
	require.Len(t, avail, n)
	ids := make([]uuid.UUID, n)
	for i, a := range avail {
		ids[i] = a.ID
	}
	return ids
}

func (s *ReservationSuite) availability(providerID uuid.UUID) []response.AvailableSlotResponse {
	t := s.T()
	url := fmt.Sprintf(availabilityURL, providerID, builder.BaseDay.Format(request.DateLayout))
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")
	var body response.AvailabilityResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &body)
	return body.Slots
}

func (s *ReservationSuite) checkout(token string, slotIDs []uuid.UUID) response.CheckoutResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL, request.CheckoutRequest{SlotIDs: slotIDs}, token)
	var body response.CheckoutResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &body)
	require.NotEmpty(t, body.IntentID)
	return body
}

func (s *ReservationSuite) confirm(token, intentID string, wantStatus int) response.SettlementResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL, request.ConfirmRequest{IntentID: intentID}, token)
	var body response.SettlementResponse
	httptest.AssertSuccessResponse(t, w, wantStatus, &body)
	return body
}

// =============================================================================
// TestCheckoutAndCommit
// =============================================================================

func (s *ReservationSuite) TestCheckoutAndCommit() {
	s.Run("paid checkout commits one booking and hides the slots", func() {
		t := s.T()
		providerID := uuid.New()
		slotIDs := s.publishDay(providerID, 3)
		studentID, token := s.tokens.NewStudent(t)

		co := s.checkout(token, slotIDs[:2])
		require.Equal(t, int64(200000), co.Amount, "two hours at the hourly rate")
		require.Equal(t, "thb", co.Currency)

		// leased slots are hidden until the lease lapses
		require.Len(t, s.availability(providerID), 1)

		pending := s.confirm(token, co.IntentID, http.StatusAccepted)
		require.Equal(t, "AWAITING_PAYMENT", pending.Status)

		s.Gateway.Pay(co.IntentID)
		settled := s.confirm(token, co.IntentID, http.StatusOK)
		require.Equal(t, "COMMITTED", settled.Status)
		require.NotNil(t, settled.Booking)

		want := &queries.BookingView{
			StudentID:   studentID,
			ProviderID:  providerID,
			Status:      "confirmed",
			AmountCents: 200000,
			Currency:    "thb",
			IntentID:    co.IntentID,
		}
		opts := cmp.Options{
			cmpopts.IgnoreFields(queries.BookingView{}, "ID", "Slots", "CreatedAt", "UpdatedAt", "CanceledAt"),
		}
		if diff := cmp.Diff(want, settled.Booking, opts...); diff != "" {
			t.Errorf("booking mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, settled.Booking.Slots, 2)

		for _, id := range slotIDs[:2] {
			row := dbtest.GetSlotRow(t, s.DB, id)
			require.Equal(t, "booked", row.Status)
			require.Equal(t, settled.Booking.ID, *row.BookingID)
			require.False(t, row.Leased, "commit clears the lease")
		}
		remaining := s.availability(providerID)
		require.Len(t, remaining, 1)
		require.Equal(t, slotIDs[2], remaining[0].ID)

		// replayed confirm is idempotent
		again := s.confirm(token, co.IntentID, http.StatusOK)
		require.Equal(t, "COMMITTED", again.Status)
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "bookings", ""))
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "payment_records", ""))

		n, err := s.Relay.RunOnce(t.Context())
		require.NoError(t, err)
		require.Equal(t, 1, n)
		events := s.Publisher.Events()
		require.Len(t, events, 1)
		require.Equal(t, booking.EventConfirmed, events[0].RoutingKey)
		require.Equal(t, settled.Booking.ID.String(), events[0].Body["booking_id"])

		// nothing left to relay
		n, err = s.Relay.RunOnce(t.Context())
		require.NoError(t, err)
		require.Zero(t, n)
	})

	s.Run("failed payment rejects without booking the slots", func() {
		t := s.T()
		providerID := uuid.New()
		slotIDs := s.publishDay(providerID, 2)
		_, token := s.tokens.NewStudent(t)

		co := s.checkout(token, slotIDs)
		s.Gateway.Fail(co.IntentID)

		settled := s.confirm(token, co.IntentID, http.StatusOK)
		require.Equal(t, "REJECTED", settled.Status)
		require.NotNil(t, settled.Reason)
		require.Equal(t, "payment_failed", *settled.Reason)

		// the lease is left to lapse on its own
		require.Empty(t, s.availability(providerID))
		for _, id := range slotIDs {
			row := dbtest.GetSlotRow(t, s.DB, id)
			require.Equal(t, "free", row.Status)
			require.True(t, row.Leased)
		}
		require.Zero(t, dbtest.CountRows(t, s.DB, "bookings", ""))
		_, refunded := s.Gateway.Refunded(co.IntentID)
		require.False(t, refunded)
	})

	s.Run("non-consecutive selection is refused", func() {
		t := s.T()
		slotIDs := s.publishDay(uuid.New(), 3)
		_, token := s.tokens.NewStudent(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			request.CheckoutRequest{SlotIDs: []uuid.UUID{slotIDs[0], slotIDs[2]}}, token)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "consecutive")
		require.Zero(t, dbtest.CountRows(t, s.DB, "checkouts", ""))
	})

	s.Run("tutor token cannot checkout", func() {
		t := s.T()
		slotIDs := s.publishDay(uuid.New(), 1)
		tutor := s.tokens.GenerateToken(t, uuid.New(), jwt.RoleTutor)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL, request.CheckoutRequest{SlotIDs: slotIDs}, tutor)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	s.Run("expired token is rejected", func() {
		t := s.T()
		slotIDs := s.publishDay(uuid.New(), 1)
		expired := s.tokens.CreateExpiredToken(t, uuid.New(), jwt.RoleStudent)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL, request.CheckoutRequest{SlotIDs: slotIDs}, expired)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// TestConcurrentCommit
// =============================================================================

func (s *ReservationSuite) TestConcurrentCommit() {
	s.Run("two paid intents for the same slots commit exactly once", func() {
		t := s.T()
		providerID := uuid.New()
		slotIDs := s.publishDay(providerID, 2)

		_, tokenA := s.tokens.NewStudent(t)
		_, tokenB := s.tokens.NewStudent(t)
		coA := s.checkout(tokenA, slotIDs)
		// leases are advisory: B replaces A's lease
		coB := s.checkout(tokenB, slotIDs)

		s.Gateway.Pay(coA.IntentID)
		s.Gateway.Pay(coB.IntentID)

		type outcome struct {
			intent string
			body   response.SettlementResponse
			code   int
		}
		results := make([]outcome, 2)
		var wg sync.WaitGroup
		for i, c := range []struct{ token, intent string }{{tokenA, coA.IntentID}, {tokenB, coB.IntentID}} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL, request.ConfirmRequest{IntentID: c.intent}, c.token)
				var body response.SettlementResponse
				_ = httptest.DecodeResponseBody(t, w.Body, &body)
				results[i] = outcome{intent: c.intent, body: body, code: w.Code}
			}()
		}
		wg.Wait()

		var committed, rejected []outcome
		for _, r := range results {
			require.Equal(t, http.StatusOK, r.code)
			switch r.body.Status {
			case "COMMITTED":
				committed = append(committed, r)
			case "REJECTED":
				rejected = append(rejected, r)
			}
		}
		require.Len(t, committed, 1)
		require.Len(t, rejected, 1)
		require.Equal(t, "slot_unavailable", *rejected[0].body.Reason)

		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "bookings", ""))
		for _, id := range slotIDs {
			require.Equal(t, "booked", dbtest.GetSlotRow(t, s.DB, id).Status)
		}

		// the loser's payment is refunded through the outbox
		_, err := s.Relay.RunOnce(t.Context())
		require.NoError(t, err)
		refund, ok := s.Gateway.Refunded(rejected[0].intent)
		require.True(t, ok)
		require.Equal(t, payment.MustMoney(200000, "thb"), refund)
		_, ok = s.Gateway.Refunded(committed[0].intent)
		require.False(t, ok)
	})
}

// =============================================================================
// TestWebhook
// =============================================================================

func (s *ReservationSuite) TestWebhook() {
	s.Run("verified charge.complete commits the checkout", func() {
		t := s.T()
		slotIDs := s.publishDay(uuid.New(), 1)
		_, token := s.tokens.NewStudent(t)
		co := s.checkout(token, slotIDs)

		s.Gateway.Pay(co.IntentID)
		eventID := s.Gateway.EmitEvent(co.IntentID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			request.OmiseWebhookRequest{ID: eventID, Key: "charge.complete"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(checkoutViewURL, co.IntentID), nil, token)
		var view queries.CheckoutView
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &view)
		require.Equal(t, "COMMITTED", view.State)
		require.NotNil(t, view.BookingID)
	})

	s.Run("unknown event is refused", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			request.OmiseWebhookRequest{ID: "evnt_forged"}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("other students cannot see the checkout", func() {
		t := s.T()
		slotIDs := s.publishDay(uuid.New(), 1)
		_, owner := s.tokens.NewStudent(t)
		_, stranger := s.tokens.NewStudent(t)
		co := s.checkout(owner, slotIDs)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(checkoutViewURL, co.IntentID), nil, stranger)
		require.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL, request.ConfirmRequest{IntentID: co.IntentID}, stranger)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// =============================================================================
// TestLeases
// =============================================================================

func (s *ReservationSuite) TestLeases() {
	s.Run("reserve hides slots and release shows them again", func() {
		t := s.T()
		providerID := uuid.New()
		slotIDs := s.publishDay(providerID, 2)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reserveURL, request.ReserveRequest{SlotIDs: slotIDs}, "")
		var lease response.LeaseResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &lease)
		require.Empty(t, s.availability(providerID))

		// someone else's token cannot release
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/reservations/lease/release",
			request.LeaseRequest{LeaseToken: uuid.New(), SlotIDs: slotIDs}, "")
		require.Equal(t, http.StatusConflict, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/reservations/lease/release",
			request.LeaseRequest{LeaseToken: lease.LeaseToken, SlotIDs: slotIDs}, "")
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, s.availability(providerID), 2)
	})
}

// =============================================================================
// TestCancel
// =============================================================================

func (s *ReservationSuite) TestCancel() {
	s.Run("cancel retires booked slots and reissues the windows", func() {
		t := s.T()
		providerID := uuid.New()
		slotIDs := s.publishDay(providerID, 2)
		_, token := s.tokens.NewStudent(t)

		co := s.checkout(token, slotIDs)
		s.Gateway.Pay(co.IntentID)
		settled := s.confirm(token, co.IntentID, http.StatusOK)
		require.Equal(t, "COMMITTED", settled.Status)
		bookingID := settled.Booking.ID

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL+"/"+bookingID.String()+"/cancel", nil, token)
		var canceled response.CancelBookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &canceled)
		require.Len(t, canceled.ReleasedSlots, 2)

		for _, id := range slotIDs {
			row := dbtest.GetSlotRow(t, s.DB, id)
			require.True(t, row.Retired)
			require.Equal(t, "booked", row.Status, "retired rows keep their history")
		}

		reissued := s.availability(providerID)
		require.Len(t, reissued, 2)
		got := []uuid.UUID{reissued[0].ID, reissued[1].ID}
		if diff := cmp.Diff(canceled.ReleasedSlots, got, cmpopts.SortSlices(func(a, b uuid.UUID) bool {
			return a.String() < b.String()
		})); diff != "" {
			t.Errorf("reissued slots mismatch (-want +got):\n%s", diff)
		}
		require.NotContains(t, got, slotIDs[0])

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"/"+bookingID.String(), nil, token)
		var view queries.BookingView
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &view)
		require.Equal(t, "canceled", view.Status)
		require.NotNil(t, view.CanceledAt)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL+"/"+bookingID.String()+"/cancel", nil, token)
		require.Equal(t, http.StatusConflict, w.Code)
	})
}

// =============================================================================
// TestListBookings
// =============================================================================

func (s *ReservationSuite) TestListBookings() {
	s.Run("pages newest first", func() {
		t := s.T()
		providerID := uuid.New()
		slotIDs := s.publishDay(providerID, 3)
		_, token := s.tokens.NewStudent(t)

		for _, id := range slotIDs {
			co := s.checkout(token, []uuid.UUID{id})
			s.Gateway.Pay(co.IntentID)
			require.Equal(t, "COMMITTED", s.confirm(token, co.IntentID, http.StatusOK).Status)
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2", nil, token)
		var first response.BookingListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &first)
		require.Len(t, first.Items, 2)
		require.NotEmpty(t, first.NextCursor)
		require.False(t, first.Items[0].CreatedAt.Before(first.Items[1].CreatedAt))

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2&after="+first.NextCursor, nil, token)
		var second response.BookingListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &second)
		require.Len(t, second.Items, 1)
		require.Empty(t, second.NextCursor)

		seen := map[uuid.UUID]bool{}
		for _, it := range append(first.Items, second.Items...) {
			require.False(t, seen[it.ID], "page overlap")
			seen[it.ID] = true
		}
	})
}
