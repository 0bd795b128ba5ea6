package checkout

import (
	"errors"
	"slices"
	"time"

	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid checkout state transition")
	ErrLeaseStillActive  = errors.New("checkout lease has not lapsed")
	ErrMissingIntentID   = errors.New("intent id is required")
	ErrForeignLease      = errors.New("lease belongs to another holder")
)

// Attempt tracks one checkout from lease to settlement. It is keyed by the
// gateway intent id once payment has been requested.
type Attempt struct {
	intentID     string
	studentID    uuid.UUID
	providerID   uuid.UUID
	slotIDs      []uuid.UUID
	amount       payment.Money
	lease        *slot.Lease
	state        State
	rejectReason *RejectReason
	bookingID    *uuid.UUID
	createdAt    time.Time
	updatedAt    time.Time
}

func Initiate(studentID, providerID uuid.UUID, slotIDs []uuid.UUID, amount payment.Money, now time.Time) *Attempt {
	return &Attempt{
		studentID:  studentID,
		providerID: providerID,
		slotIDs:    slices.Clone(slotIDs),
		amount:     amount,
		state:      StateInitiated,
		createdAt:  now,
		updatedAt:  now,
	}
}

func Reconstruct(
	intentID string,
	studentID, providerID uuid.UUID,
	slotIDs []uuid.UUID,
	amount payment.Money,
	lease *slot.Lease,
	state State,
	rejectReason *RejectReason,
	bookingID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Attempt {
	return &Attempt{
		intentID:     intentID,
		studentID:    studentID,
		providerID:   providerID,
		slotIDs:      slotIDs,
		amount:       amount,
		lease:        lease,
		state:        state,
		rejectReason: rejectReason,
		bookingID:    bookingID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (a *Attempt) MarkLeased(lease slot.Lease, now time.Time) error {
	if a.state != StateInitiated {
		return ErrInvalidTransition
	}
	a.lease = &lease
	a.state = StateLeased
	a.updatedAt = now
	return nil
}

func (a *Attempt) AwaitPayment(intentID string, now time.Time) error {
	if intentID == "" {
		return ErrMissingIntentID
	}
	if a.state != StateLeased {
		return ErrInvalidTransition
	}
	a.intentID = intentID
	a.state = StateAwaitingPayment
	a.updatedAt = now
	return nil
}

func (a *Attempt) Commit(bookingID uuid.UUID, now time.Time) error {
	if !a.settleable() {
		return ErrInvalidTransition
	}
	a.bookingID = &bookingID
	a.state = StateCommitted
	a.updatedAt = now
	return nil
}

func (a *Attempt) Reject(reason RejectReason, now time.Time) error {
	if !a.settleable() {
		return ErrInvalidTransition
	}
	a.rejectReason = &reason
	a.state = StateRejected
	a.updatedAt = now
	return nil
}

// ExtendLease follows a lease extension made with the attempt's own token so
// the expiry sweep sees the new deadline.
func (a *Attempt) ExtendLease(lease slot.Lease, now time.Time) error {
	if a.state != StateLeased && a.state != StateAwaitingPayment {
		return ErrInvalidTransition
	}
	if a.lease == nil || a.lease.Token() != lease.Token() {
		return ErrForeignLease
	}
	a.lease = &lease
	a.updatedAt = now
	return nil
}

// Expire moves an unpaid attempt to EXPIRED once its lease has lapsed.
func (a *Attempt) Expire(now time.Time) error {
	if a.state != StateAwaitingPayment {
		return ErrInvalidTransition
	}
	if a.lease != nil && a.lease.ActiveAt(now) {
		return ErrLeaseStillActive
	}
	a.state = StateExpired
	a.updatedAt = now
	return nil
}

// MatchesPayment compares the captured amount with the quoted price.
func (a *Attempt) MatchesPayment(paid payment.Money) bool {
	return a.amount.Equal(paid)
}

func (a *Attempt) settleable() bool {
	return a.state == StateAwaitingPayment || a.state == StateExpired
}

func (a *Attempt) IsTerminal() bool { return a.state.IsTerminal() }

func (a *Attempt) IntentID() string            { return a.intentID }
func (a *Attempt) StudentID() uuid.UUID        { return a.studentID }
func (a *Attempt) ProviderID() uuid.UUID       { return a.providerID }
func (a *Attempt) SlotIDs() []uuid.UUID        { return slices.Clone(a.slotIDs) }
func (a *Attempt) Amount() payment.Money       { return a.amount }
func (a *Attempt) Lease() *slot.Lease          { return a.lease }
func (a *Attempt) State() State                { return a.state }
func (a *Attempt) RejectReason() *RejectReason { return a.rejectReason }
func (a *Attempt) BookingID() *uuid.UUID       { return a.bookingID }
func (a *Attempt) CreatedAt() time.Time        { return a.createdAt }
func (a *Attempt) UpdatedAt() time.Time        { return a.updatedAt }
