package converter

import (
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SlotColumns matches the order ScanSlot expects.
const SlotColumns = "id, provider_id, slot_date, start_time, end_time, status, lease_token, lease_expires_at, booking_id, retired_at"

func ScanSlot(row pgx.Row) (*slot.Slot, error) {
	var (
		id, providerID uuid.UUID
		date           pgtype.Date
		start, end     pgtype.Timestamptz
		status         string
		leaseToken     pgtype.UUID
		leaseExpiresAt pgtype.Timestamptz
		bookingID      pgtype.UUID
		retiredAt      pgtype.Timestamptz
	)
	if err := row.Scan(&id, &providerID, &date, &start, &end, &status, &leaseToken, &leaseExpiresAt, &bookingID, &retiredAt); err != nil {
		return nil, err
	}

	var lease *slot.Lease
	if leaseToken.Valid && leaseExpiresAt.Valid {
		l := slot.ReconstructLease(uuid.UUID(leaseToken.Bytes), leaseExpiresAt.Time.UTC())
		lease = &l
	}

	return slot.Reconstruct(
		id, providerID,
		pgconv.DateFromPgtype(date),
		start.Time.UTC(), end.Time.UTC(),
		slot.Status(status),
		lease,
		pgconv.UUIDPtrFromPgtype(bookingID),
		pgconv.TimePtrFromPgtype(retiredAt),
	), nil
}

// SlotInsertArgs returns the values for an insert using SlotColumns order.
func SlotInsertArgs(s *slot.Slot) []any {
	var leaseToken pgtype.UUID
	var leaseExpiresAt pgtype.Timestamptz
	if l := s.Lease(); l != nil {
		leaseToken = pgconv.UUIDToPgtype(l.Token())
		leaseExpiresAt = pgconv.TimeToPgtype(l.ExpiresAt())
	}
	return []any{
		s.ID(),
		s.ProviderID(),
		pgconv.DateToPgtype(s.Date()),
		pgconv.TimeToPgtype(s.StartTime()),
		pgconv.TimeToPgtype(s.EndTime()),
		s.Status().String(),
		leaseToken,
		leaseExpiresAt,
		pgconv.UUIDPtrToPgtype(s.BookingID()),
		pgconv.TimePtrToPgtype(s.RetiredAt()),
	}
}
