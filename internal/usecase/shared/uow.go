package shared

import (
	"context"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Slots() SlotRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
	Checkouts() CheckoutRepository
	Outbox() OutboxRepository
}

type CommandReads interface {
	SlotsByIDs(ctx context.Context, ids []uuid.UUID) ([]*slot.Slot, error)
	CheckoutByIntentID(ctx context.Context, intentID string) (*checkout.Attempt, error)
}

// SlotRepository is bound to the surrounding transaction.
type SlotRepository interface {
	// GetMany returns every requested slot or a NOT_FOUND repository error.
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*slot.Slot, error)
	// MarkBooked flips every slot to booked only if every one of them is still
	// free; otherwise nothing is written and a CONFLICT repository error is returned.
	MarkBooked(ctx context.Context, ids []uuid.UUID, bookingID uuid.UUID) error
	// WriteLease overwrites whatever lease the slots carry.
	WriteLease(ctx context.Context, ids []uuid.UUID, lease slot.Lease) error
	// ExtendLease and ReleaseLease only touch slots whose lease token matches.
	ExtendLease(ctx context.Context, ids []uuid.UUID, lease slot.Lease) (int64, error)
	ReleaseLease(ctx context.Context, ids []uuid.UUID, token uuid.UUID) (int64, error)
	// Publish inserts new free slots, skipping windows the provider already has.
	Publish(ctx context.Context, slots []*slot.Slot) (int64, error)
	// Reissue retires the given slots and inserts fresh free replacements.
	Reissue(ctx context.Context, ids []uuid.UUID, now time.Time) ([]*slot.Slot, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, b *booking.Booking) error
}

type PaymentRepository interface {
	Create(ctx context.Context, rec *payment.Record) error
}

type CheckoutRepository interface {
	Create(ctx context.Context, a *checkout.Attempt) error
	FindByIntentIDForUpdate(ctx context.Context, intentID string) (*checkout.Attempt, error)
	Update(ctx context.Context, a *checkout.Attempt) error
	// ListLapsed returns awaiting attempts whose lease expired at or before now.
	ListLapsed(ctx context.Context, now time.Time, limit int32) ([]*checkout.Attempt, error)
	// ExtendLease moves the lease expiry of unsettled attempts holding the
	// lease's token and reports how many changed.
	ExtendLease(ctx context.Context, lease slot.Lease, now time.Time) (int64, error)
}

// OutboxRepository stores integration events in the same transaction as the
// state change that produced them. (Kind, DedupeKey) is unique.
type OutboxRepository interface {
	Enqueue(ctx context.Context, kind, dedupeKey string, payload []byte, now time.Time) error
	ClaimPending(ctx context.Context, limit int32) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// MarkRefunded records that the refund side effect of a refund event ran,
	// independently of whether the event itself has been published.
	MarkRefunded(ctx context.Context, id uuid.UUID, now time.Time) error
}

type OutboxEvent struct {
	ID        uuid.UUID
	Kind      string
	DedupeKey string
	Payload   []byte
	Attempts  int32
	CreatedAt time.Time
	// RefundedAt is set once the gateway refund for a refund event succeeded.
	RefundedAt *time.Time
}
