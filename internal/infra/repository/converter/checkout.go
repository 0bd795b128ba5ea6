package converter

import (
	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const CheckoutColumns = "intent_id, student_id, provider_id, slot_ids, amount, currency, lease_token, lease_expires_at, state, reject_reason, booking_id, created_at, updated_at"

func ScanCheckout(row pgx.Row) (*checkout.Attempt, error) {
	var (
		intentID              string
		studentID, providerID uuid.UUID
		slotIDs               []pgtype.UUID
		amount                int64
		currency              string
		leaseToken            pgtype.UUID
		leaseExpiresAt        pgtype.Timestamptz
		state                 string
		rejectReason          pgtype.Text
		bookingID             pgtype.UUID
		createdAt, updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(&intentID, &studentID, &providerID, &slotIDs, &amount, &currency, &leaseToken, &leaseExpiresAt,
		&state, &rejectReason, &bookingID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	money, err := payment.NewMoney(amount, currency)
	if err != nil {
		return nil, err
	}

	var lease *slot.Lease
	if leaseToken.Valid && leaseExpiresAt.Valid {
		l := slot.ReconstructLease(uuid.UUID(leaseToken.Bytes), leaseExpiresAt.Time.UTC())
		lease = &l
	}

	var reason *checkout.RejectReason
	if rejectReason.Valid {
		r := checkout.RejectReason(rejectReason.String)
		reason = &r
	}

	return checkout.Reconstruct(
		intentID, studentID, providerID,
		pgconv.UUIDsFromPgtype(slotIDs),
		money,
		lease,
		checkout.State(state),
		reason,
		pgconv.UUIDPtrFromPgtype(bookingID),
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt),
	), nil
}

func CheckoutInsertArgs(a *checkout.Attempt) []any {
	var leaseToken pgtype.UUID
	var leaseExpiresAt pgtype.Timestamptz
	if l := a.Lease(); l != nil {
		leaseToken = pgconv.UUIDToPgtype(l.Token())
		leaseExpiresAt = pgconv.TimeToPgtype(l.ExpiresAt())
	}
	return []any{
		a.IntentID(),
		a.StudentID(),
		a.ProviderID(),
		pgconv.UUIDsToPgtype(a.SlotIDs()),
		a.Amount().Amount(),
		a.Amount().Currency(),
		leaseToken,
		leaseExpiresAt,
		a.State().String(),
		RejectReasonText(a.RejectReason()),
		pgconv.UUIDPtrToPgtype(a.BookingID()),
		pgconv.TimeToPgtype(a.CreatedAt()),
		pgconv.TimeToPgtype(a.UpdatedAt()),
	}
}

func RejectReasonText(r *checkout.RejectReason) pgtype.Text {
	if r == nil {
		return pgtype.Text{Valid: false}
	}
	return pgconv.StringToPgtype(r.String())
}
