package payment

import (
	"time"

	"github.com/google/uuid"
)

type RecordStatus string

const (
	RecordStatusSucceeded RecordStatus = "succeeded"
)

func (s RecordStatus) String() string {
	return string(s)
}

// Record is the ledger entry written alongside a confirmed booking.
type Record struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	amount     Money
	status     RecordStatus
	gatewayRef string
	createdAt  time.Time
}

func NewRecord(bookingID uuid.UUID, amount Money, gatewayRef string, now time.Time) *Record {
	return &Record{
		id:         uuid.New(),
		bookingID:  bookingID,
		amount:     amount,
		status:     RecordStatusSucceeded,
		gatewayRef: gatewayRef,
		createdAt:  now,
	}
}

func ReconstructRecord(id, bookingID uuid.UUID, amount Money, status RecordStatus, gatewayRef string, createdAt time.Time) *Record {
	return &Record{
		id:         id,
		bookingID:  bookingID,
		amount:     amount,
		status:     status,
		gatewayRef: gatewayRef,
		createdAt:  createdAt,
	}
}

func (r *Record) ID() uuid.UUID        { return r.id }
func (r *Record) BookingID() uuid.UUID { return r.bookingID }
func (r *Record) Amount() Money        { return r.amount }
func (r *Record) Status() RecordStatus { return r.status }
func (r *Record) GatewayRef() string   { return r.gatewayRef }
func (r *Record) CreatedAt() time.Time { return r.createdAt }
