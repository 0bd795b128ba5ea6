package commands

import (
	"context"
	"time"

	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidSlot = errs.New("invalid slot")

type PublishSlotInput struct {
	ProviderID uuid.UUID
	Date       time.Time
	StartTime  time.Time
	EndTime    time.Time
}

type PublishSlotsResult struct {
	Requested int
	Inserted  int64
}

type SlotCommands interface {
	// Publish feeds provider availability into the store. Windows that already
	// exist for the provider are skipped.
	Publish(ctx context.Context, in []PublishSlotInput) (*PublishSlotsResult, error)
}

type slotUseCaseImpl struct {
	uow shared.UnitOfWork
}

func NewSlotUseCase(uow shared.UnitOfWork) SlotCommands {
	return &slotUseCaseImpl{uow: uow}
}

func (uc *slotUseCaseImpl) Publish(ctx context.Context, in []PublishSlotInput) (*PublishSlotsResult, error) {
	if len(in) == 0 {
		return nil, ErrInvalidSlot
	}

	slots := make([]*slot.Slot, 0, len(in))
	for _, item := range in {
		s, err := slot.NewSlot(item.ProviderID, item.Date, item.StartTime, item.EndTime)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidSlot)
		}
		slots = append(slots, s)
	}

	var inserted int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Slots().Publish(ctx, slots)
		inserted = n
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &PublishSlotsResult{Requested: len(in), Inserted: inserted}, nil
}
