package booking

import (
	"errors"
	"slices"
	"time"

	"tutor-booking/internal/domain/payment"

	"github.com/google/uuid"
)

var (
	ErrNoSlots          = errors.New("booking needs at least one slot")
	ErrInvalidStatus    = errors.New("invalid booking status transition")
	ErrNotOwner         = errors.New("booking belongs to another student")
	ErrAlreadyCanceled  = errors.New("booking is already canceled")
	ErrMissingIntent    = errors.New("payment intent id is required")
	ErrMissingStudentID = errors.New("student id is required")
)

type Booking struct {
	id         uuid.UUID
	studentID  uuid.UUID
	providerID uuid.UUID
	slotIDs    []uuid.UUID
	status     Status
	price      payment.Money
	intentID   string
	createdAt  time.Time
	updatedAt  time.Time
	canceledAt *time.Time
}

// NewBooking starts a pending booking. slotIDs are kept in the order given,
// which callers pass sorted by start time.
func NewBooking(
	studentID, providerID uuid.UUID,
	slotIDs []uuid.UUID,
	price payment.Money,
	intentID string,
	now time.Time,
) (*Booking, error) {
	if studentID == uuid.Nil {
		return nil, ErrMissingStudentID
	}
	if len(slotIDs) == 0 {
		return nil, ErrNoSlots
	}
	if intentID == "" {
		return nil, ErrMissingIntent
	}
	return &Booking{
		id:         uuid.New(),
		studentID:  studentID,
		providerID: providerID,
		slotIDs:    slices.Clone(slotIDs),
		status:     StatusPending,
		price:      price,
		intentID:   intentID,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func Reconstruct(
	id, studentID, providerID uuid.UUID,
	slotIDs []uuid.UUID,
	status Status,
	price payment.Money,
	intentID string,
	createdAt, updatedAt time.Time,
	canceledAt *time.Time,
) *Booking {
	return &Booking{
		id:         id,
		studentID:  studentID,
		providerID: providerID,
		slotIDs:    slotIDs,
		status:     status,
		price:      price,
		intentID:   intentID,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		canceledAt: canceledAt,
	}
}

func (b *Booking) Confirm(now time.Time) error {
	if b.status != StatusPending {
		return ErrInvalidStatus
	}
	b.status = StatusConfirmed
	b.updatedAt = now
	return nil
}

// Cancel is only open to the student who owns the booking.
func (b *Booking) Cancel(actorID uuid.UUID, now time.Time) error {
	if actorID != b.studentID {
		return ErrNotOwner
	}
	switch b.status {
	case StatusCanceled:
		return ErrAlreadyCanceled
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidStatus
	}
	b.status = StatusCanceled
	b.updatedAt = now
	b.canceledAt = &now
	return nil
}

func (b *Booking) IsConfirmed() bool { return b.status == StatusConfirmed }
func (b *Booking) IsCanceled() bool  { return b.status == StatusCanceled }

func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) StudentID() uuid.UUID   { return b.studentID }
func (b *Booking) ProviderID() uuid.UUID  { return b.providerID }
func (b *Booking) SlotIDs() []uuid.UUID   { return slices.Clone(b.slotIDs) }
func (b *Booking) Status() Status         { return b.status }
func (b *Booking) Price() payment.Money   { return b.price }
func (b *Booking) IntentID() string       { return b.intentID }
func (b *Booking) CreatedAt() time.Time   { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time   { return b.updatedAt }
func (b *Booking) CanceledAt() *time.Time { return b.canceledAt }
