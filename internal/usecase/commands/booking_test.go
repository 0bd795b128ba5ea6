//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/internal/usecase/queries"
	"tutor-booking/tests/common/builder"
	"tutor-booking/tests/common/memstore"
	"tutor-booking/tests/common/paytest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memstore.Store, commands.BookingCommands, commands.ReservationCommands, *paytest.FakeGateway, *clock.MockClock) {
		t.Helper()
		store := memstore.New()
		clk := clock.NewMockClock(builder.BaseDay.Add(-time.Hour))
		gw := paytest.NewFakeGateway()
		leases := commands.NewLeaseManager(store, clk, commands.LeaseTTL(time.Minute))
		res := commands.NewReservationUseCase(store, leases, gw, booking.NewHourlyPriceCalculator(100000, "thb"), clk)
		return store, commands.NewBookingUseCase(store, clk), res, gw, clk
	}

	book := func(t *testing.T, store *memstore.Store, res commands.ReservationCommands, gw *paytest.FakeGateway, student uuid.UUID) ([]uuid.UUID, uuid.UUID) {
		t.Helper()
		block := builder.NewSlotBuilder().WithCount(2).BuildBlock()
		store.Seed(block...)
		ids := []uuid.UUID{block[0].ID(), block[1].ID()}
		co, err := res.Checkout(ctx, commands.CheckoutInput{StudentID: student, SlotIDs: ids})
		require.NoError(t, err)
		out, err := res.HandlePaymentNotification(ctx, gw.Pay(co.IntentID))
		require.NoError(t, err)
		return ids, *out.BookingID
	}

	t.Run("owner cancel reissues fresh slots", func(t *testing.T) {
		store, uc, res, gw, clk := setup(t)
		student := uuid.New()
		oldIDs, bookingID := book(t, store, res, gw, student)

		out, err := uc.Cancel(ctx, bookingID, student)
		require.NoError(t, err)
		require.Len(t, out.ReleasedSlots, 2)

		for i, id := range out.ReleasedSlots {
			assert.NotContains(t, oldIDs, id)
			fresh := store.Slot(id)
			require.NotNil(t, fresh)
			assert.True(t, fresh.IsAvailableAt(clk.Now()))
			assert.Equal(t, store.Slot(oldIDs[i]).StartTime(), fresh.StartTime())
			assert.NotNil(t, store.Slot(oldIDs[i]).RetiredAt())
		}

		events := store.OutboxOfKind(booking.EventCanceled)
		require.Len(t, events, 1)
		var payload booking.Canceled
		require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
		assert.Equal(t, out.ReleasedSlots, payload.ReleasedSlots)

		view, err := queries.NewBookingQueries(store).GetByID(ctx, student, bookingID)
		require.NoError(t, err)
		assert.Equal(t, "canceled", view.Status)
	})

	t.Run("stale ids cannot be reserved again", func(t *testing.T) {
		store, uc, res, gw, _ := setup(t)
		student := uuid.New()
		oldIDs, bookingID := book(t, store, res, gw, student)
		_, err := uc.Cancel(ctx, bookingID, student)
		require.NoError(t, err)

		_, err = res.Reserve(ctx, commands.ReserveInput{SlotIDs: oldIDs})
		assert.True(t, errs.Is(err, commands.ErrSlotNotFound))
	})

	t.Run("only the owner may cancel", func(t *testing.T) {
		store, uc, res, gw, _ := setup(t)
		_, bookingID := book(t, store, res, gw, uuid.New())

		_, err := uc.Cancel(ctx, bookingID, uuid.New())
		assert.True(t, errs.Is(err, commands.ErrBookingNotOwned))
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		store, uc, res, gw, _ := setup(t)
		student := uuid.New()
		_, bookingID := book(t, store, res, gw, student)
		_, err := uc.Cancel(ctx, bookingID, student)
		require.NoError(t, err)

		_, err = uc.Cancel(ctx, bookingID, student)
		assert.True(t, errs.Is(err, commands.ErrBookingAlreadyCanceled))
		assert.Len(t, store.OutboxOfKind(booking.EventCanceled), 1)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, uc, _, _, _ := setup(t)
		_, err := uc.Cancel(ctx, uuid.New(), uuid.New())
		assert.True(t, errs.Is(err, commands.ErrBookingNotFound))
	})
}

func TestPublishSlots(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := commands.NewSlotUseCase(store)
	provider := uuid.New()
	start := builder.BaseDay.Add(9 * time.Hour)

	in := []commands.PublishSlotInput{
		{ProviderID: provider, Date: builder.BaseDay, StartTime: start, EndTime: start.Add(30 * time.Minute)},
		{ProviderID: provider, Date: builder.BaseDay, StartTime: start.Add(30 * time.Minute), EndTime: start.Add(time.Hour)},
	}

	out, err := uc.Publish(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Inserted)

	out, err = uc.Publish(ctx, in)
	require.NoError(t, err)
	assert.Zero(t, out.Inserted)

	_, err = uc.Publish(ctx, []commands.PublishSlotInput{{ProviderID: provider, Date: builder.BaseDay, StartTime: start, EndTime: start}})
	assert.True(t, errs.Is(err, commands.ErrInvalidSlot))
}
