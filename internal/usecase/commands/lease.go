package commands

import (
	"context"
	"log/slog"
	"time"

	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrLeaseNotHeld = errs.New("lease not held")
	ErrInvalidLease = errs.New("invalid lease request")
)

type LeaseTTL time.Duration

type LeaseCommands interface {
	// Acquire writes a lease on every slot. It never fails because another
	// holder has a lease; a nil holder gets a fresh token.
	Acquire(ctx context.Context, slotIDs []uuid.UUID, holder *uuid.UUID) (slot.Lease, error)
	Extend(ctx context.Context, token uuid.UUID, slotIDs []uuid.UUID) (slot.Lease, error)
	Release(ctx context.Context, token uuid.UUID, slotIDs []uuid.UUID) error
}

type leaseManager struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	ttl   time.Duration
}

func NewLeaseManager(uow shared.UnitOfWork, clk clock.Clock, ttl LeaseTTL) LeaseCommands {
	d := time.Duration(ttl)
	if d <= 0 {
		d = slot.DefaultLeaseTTL
	}
	return &leaseManager{uow: uow, clock: clk, ttl: d}
}

func (m *leaseManager) Acquire(ctx context.Context, slotIDs []uuid.UUID, holder *uuid.UUID) (slot.Lease, error) {
	if err := slot.ValidateIDs(slotIDs); err != nil {
		return slot.Lease{}, errs.Mark(err, ErrInvalidSelection)
	}

	token := uuid.New()
	if holder != nil && *holder != uuid.Nil {
		token = *holder
	}
	lease, err := slot.NewLeaseWithToken(token, m.clock.Now(), m.ttl)
	if err != nil {
		return slot.Lease{}, errs.Mark(err, ErrInvalidLease)
	}

	err = m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Slots().WriteLease(ctx, slotIDs, lease)
	})
	if err != nil {
		return slot.Lease{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	slog.DebugContext(ctx, "lease acquired",
		"slot_count", len(slotIDs),
		"expires_at", lease.ExpiresAt())
	return lease, nil
}

// Extend pushes expiry out from now. Every slot must still carry the token.
// A checkout attempt holding the same token follows the new expiry.
func (m *leaseManager) Extend(ctx context.Context, token uuid.UUID, slotIDs []uuid.UUID) (slot.Lease, error) {
	if err := slot.ValidateIDs(slotIDs); err != nil {
		return slot.Lease{}, errs.Mark(err, ErrInvalidSelection)
	}
	lease, err := slot.NewLeaseWithToken(token, m.clock.Now(), m.ttl)
	if err != nil {
		return slot.Lease{}, errs.Mark(err, ErrInvalidLease)
	}

	err = m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Slots().ExtendLease(ctx, slotIDs, lease)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if n != int64(len(slotIDs)) {
			// roll back partial extension
			return ErrLeaseNotHeld
		}
		if _, err := tx.Checkouts().ExtendLease(ctx, lease, m.clock.Now()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return slot.Lease{}, err
	}
	return lease, nil
}

func (m *leaseManager) Release(ctx context.Context, token uuid.UUID, slotIDs []uuid.UUID) error {
	if err := slot.ValidateIDs(slotIDs); err != nil {
		return errs.Mark(err, ErrInvalidSelection)
	}

	var released int64
	err := m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Slots().ReleaseLease(ctx, slotIDs, token)
		released = n
		return err
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if released == 0 {
		return ErrLeaseNotHeld
	}
	return nil
}
