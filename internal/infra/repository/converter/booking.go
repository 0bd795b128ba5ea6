package converter

import (
	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const BookingColumns = "id, student_id, provider_id, slot_ids, status, price_amount, currency, intent_id, created_at, updated_at, canceled_at"

func ScanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, studentID, providerID uuid.UUID
		slotIDs                   []pgtype.UUID
		status                    string
		amount                    int64
		currency, intentID        string
		createdAt, updatedAt      pgtype.Timestamptz
		canceledAt                pgtype.Timestamptz
	)
	if err := row.Scan(&id, &studentID, &providerID, &slotIDs, &status, &amount, &currency, &intentID, &createdAt, &updatedAt, &canceledAt); err != nil {
		return nil, err
	}
	price, err := payment.NewMoney(amount, currency)
	if err != nil {
		return nil, err
	}
	return booking.Reconstruct(
		id, studentID, providerID,
		pgconv.UUIDsFromPgtype(slotIDs),
		booking.Status(status),
		price,
		intentID,
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt),
		pgconv.TimePtrFromPgtype(canceledAt),
	), nil
}

func BookingInsertArgs(b *booking.Booking) []any {
	return []any{
		b.ID(),
		b.StudentID(),
		b.ProviderID(),
		pgconv.UUIDsToPgtype(b.SlotIDs()),
		b.Status().String(),
		b.Price().Amount(),
		b.Price().Currency(),
		b.IntentID(),
		pgconv.TimeToPgtype(b.CreatedAt()),
		pgconv.TimeToPgtype(b.UpdatedAt()),
		pgconv.TimePtrToPgtype(b.CanceledAt()),
	}
}
