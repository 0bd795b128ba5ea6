package slot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrDateMismatch     = errors.New("slot must start on its calendar date")
	ErrMissingProvider  = errors.New("provider id is required")
)

type Slot struct {
	id         uuid.UUID
	providerID uuid.UUID
	date       time.Time
	startTime  time.Time
	endTime    time.Time
	status     Status
	lease      *Lease
	bookingID  *uuid.UUID
	retiredAt  *time.Time
}

// NewSlot creates a free, unleased slot. date is truncated to the calendar day in UTC.
func NewSlot(providerID uuid.UUID, date, start, end time.Time) (*Slot, error) {
	if providerID == uuid.Nil {
		return nil, ErrMissingProvider
	}
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}
	day := TruncateDate(date)
	if !TruncateDate(start).Equal(day) {
		return nil, ErrDateMismatch
	}

	return &Slot{
		id:         uuid.New(),
		providerID: providerID,
		date:       day,
		startTime:  start.UTC(),
		endTime:    end.UTC(),
		status:     StatusFree,
	}, nil
}

func Reconstruct(
	id, providerID uuid.UUID,
	date, start, end time.Time,
	status Status,
	lease *Lease,
	bookingID *uuid.UUID,
	retiredAt *time.Time,
) *Slot {
	return &Slot{
		id:         id,
		providerID: providerID,
		date:       TruncateDate(date),
		startTime:  start,
		endTime:    end,
		status:     status,
		lease:      lease,
		bookingID:  bookingID,
		retiredAt:  retiredAt,
	}
}

// IsLeased reports whether a lease is still in force at now.
// A lease whose expiry equals now has lapsed.
func (s *Slot) IsLeased(now time.Time) bool {
	return s.lease != nil && s.lease.ActiveAt(now)
}

func (s *Slot) IsFree() bool {
	return s.status == StatusFree && s.retiredAt == nil
}

func (s *Slot) IsBooked() bool {
	return s.status == StatusBooked
}

// IsAvailableAt is the single visibility rule shared by every read path.
func (s *Slot) IsAvailableAt(now time.Time) bool {
	return s.IsFree() && !s.IsLeased(now)
}

// HeldBy reports whether token owns an active lease on the slot.
func (s *Slot) HeldBy(token uuid.UUID, now time.Time) bool {
	return s.IsLeased(now) && s.lease.Token() == token
}

// Reissue returns a fresh free slot for the same time window under a new identity.
func (s *Slot) Reissue() *Slot {
	return &Slot{
		id:         uuid.New(),
		providerID: s.providerID,
		date:       s.date,
		startTime:  s.startTime,
		endTime:    s.endTime,
		status:     StatusFree,
	}
}

func (s *Slot) Duration() time.Duration {
	return s.endTime.Sub(s.startTime)
}

func (s *Slot) ID() uuid.UUID         { return s.id }
func (s *Slot) ProviderID() uuid.UUID { return s.providerID }
func (s *Slot) Date() time.Time       { return s.date }
func (s *Slot) StartTime() time.Time  { return s.startTime }
func (s *Slot) EndTime() time.Time    { return s.endTime }
func (s *Slot) Status() Status        { return s.status }
func (s *Slot) Lease() *Lease         { return s.lease }
func (s *Slot) BookingID() *uuid.UUID { return s.bookingID }
func (s *Slot) RetiredAt() *time.Time { return s.retiredAt }

func (s *Slot) LeaseExpiresAt() *time.Time {
	if s.lease == nil {
		return nil
	}
	t := s.lease.ExpiresAt()
	return &t
}

func TruncateDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func IDs(slots []*Slot) []uuid.UUID {
	ids := make([]uuid.UUID, len(slots))
	for i, s := range slots {
		ids[i] = s.id
	}
	return ids
}
