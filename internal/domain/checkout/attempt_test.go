//go:build unit

package checkout_test

import (
	"testing"
	"time"

	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2030, time.March, 4, 8, 0, 0, 0, time.UTC)

func awaiting(t *testing.T) *checkout.Attempt {
	t.Helper()
	a := checkout.Initiate(uuid.New(), uuid.New(), []uuid.UUID{uuid.New()}, payment.MustMoney(50000, "thb"), t0)
	lease, err := slot.NewLease(t0, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, a.MarkLeased(lease, t0))
	require.NoError(t, a.AwaitPayment("chrg_test_1", t0))
	return a
}

func TestAttemptLifecycle(t *testing.T) {
	t.Run("happy path to committed", func(t *testing.T) {
		a := awaiting(t)
		assert.Equal(t, checkout.StateAwaitingPayment, a.State())

		bookingID := uuid.New()
		require.NoError(t, a.Commit(bookingID, t0.Add(time.Minute)))
		assert.Equal(t, checkout.StateCommitted, a.State())
		assert.Equal(t, &bookingID, a.BookingID())
		assert.True(t, a.IsTerminal())
	})

	t.Run("terminal attempts reject further transitions", func(t *testing.T) {
		a := awaiting(t)
		require.NoError(t, a.Reject(checkout.ReasonPaymentFailed, t0))
		assert.ErrorIs(t, a.Commit(uuid.New(), t0), checkout.ErrInvalidTransition)
		assert.ErrorIs(t, a.Reject(checkout.ReasonSlotUnavailable, t0), checkout.ErrInvalidTransition)
		assert.Equal(t, checkout.ReasonPaymentFailed, *a.RejectReason())
	})

	t.Run("cannot await payment before leasing", func(t *testing.T) {
		a := checkout.Initiate(uuid.New(), uuid.New(), []uuid.UUID{uuid.New()}, payment.MustMoney(1, "thb"), t0)
		assert.ErrorIs(t, a.AwaitPayment("chrg", t0), checkout.ErrInvalidTransition)
	})

	t.Run("expire waits for the lease to lapse", func(t *testing.T) {
		a := awaiting(t)
		assert.ErrorIs(t, a.Expire(t0.Add(4*time.Minute)), checkout.ErrLeaseStillActive)
		require.NoError(t, a.Expire(t0.Add(5*time.Minute)))
		assert.Equal(t, checkout.StateExpired, a.State())
		assert.False(t, a.IsTerminal())
	})

	t.Run("expired attempt can still settle", func(t *testing.T) {
		a := awaiting(t)
		require.NoError(t, a.Expire(t0.Add(10*time.Minute)))
		require.NoError(t, a.Commit(uuid.New(), t0.Add(11*time.Minute)))
		assert.Equal(t, checkout.StateCommitted, a.State())
	})
}

func TestExtendLease(t *testing.T) {
	t.Run("own token moves the expiry", func(t *testing.T) {
		a := awaiting(t)
		extended, err := a.Lease().Extend(t0.Add(4*time.Minute), 5*time.Minute)
		require.NoError(t, err)

		require.NoError(t, a.ExtendLease(extended, t0.Add(4*time.Minute)))
		assert.Equal(t, t0.Add(9*time.Minute), a.Lease().ExpiresAt())
		assert.ErrorIs(t, a.Expire(t0.Add(6*time.Minute)), checkout.ErrLeaseStillActive)
	})

	t.Run("another holder's token is refused", func(t *testing.T) {
		a := awaiting(t)
		foreign, err := slot.NewLease(t0, 10*time.Minute)
		require.NoError(t, err)

		assert.ErrorIs(t, a.ExtendLease(foreign, t0), checkout.ErrForeignLease)
		assert.Equal(t, t0.Add(5*time.Minute), a.Lease().ExpiresAt())
	})

	t.Run("settled attempt keeps its lease", func(t *testing.T) {
		a := awaiting(t)
		require.NoError(t, a.Commit(uuid.New(), t0))
		extended, err := a.Lease().Extend(t0, 5*time.Minute)
		require.NoError(t, err)

		assert.ErrorIs(t, a.ExtendLease(extended, t0), checkout.ErrInvalidTransition)
	})
}

func TestMatchesPayment(t *testing.T) {
	a := awaiting(t)
	assert.True(t, a.MatchesPayment(payment.MustMoney(50000, "THB")))
	assert.False(t, a.MatchesPayment(payment.MustMoney(49999, "thb")))
	assert.False(t, a.MatchesPayment(payment.MustMoney(50000, "usd")))
}

func TestRejectReasonRefunds(t *testing.T) {
	assert.True(t, checkout.ReasonSlotUnavailable.RequiresRefund())
	assert.True(t, checkout.ReasonAmountMismatch.RequiresRefund())
	assert.False(t, checkout.ReasonPaymentFailed.RequiresRefund())
}
