package commands

import (
	"context"
	"log/slog"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/pkg/clock"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound        = errs.New("booking not found")
	ErrBookingNotOwned        = errs.New("booking not owned by user")
	ErrBookingAlreadyCanceled = errs.New("booking already canceled")
)

type CancelBookingResult struct {
	BookingID     uuid.UUID
	ReleasedSlots []uuid.UUID
}

type BookingCommands interface {
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*CancelBookingResult, error)
}

type bookingUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewBookingUseCase(uow shared.UnitOfWork, clk clock.Clock) BookingCommands {
	return &bookingUseCaseImpl{uow: uow, clock: clk}
}

// Cancel returns the booked time windows to the pool as new slots so stale
// references to the old slot ids can never resurrect a reservation.
func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*CancelBookingResult, error) {
	var released []*slot.Slot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := uc.clock.Now()
		if err = b.Cancel(actorID, now); err != nil {
			switch {
			case errs.Is(err, booking.ErrNotOwner):
				return ErrBookingNotOwned
			case errs.Is(err, booking.ErrAlreadyCanceled):
				return ErrBookingAlreadyCanceled
			default:
				return err
			}
		}
		if err = tx.Bookings().UpdateStatus(ctx, b); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		released, err = tx.Slots().Reissue(ctx, b.SlotIDs(), now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return enqueue(ctx, tx, booking.EventCanceled, b.ID().String(), booking.NewCanceled(b, slot.IDs(released)), now)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking canceled",
		"booking_id", bookingID,
		"released_slots", len(released))
	return &CancelBookingResult{
		BookingID:     bookingID,
		ReleasedSlots: slot.IDs(released),
	}, nil
}
