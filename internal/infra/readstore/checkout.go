package readstore

import (
	"context"

	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/pkg/pgconv"
	"tutor-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

const selectCheckoutView = `SELECT intent_id, student_id, provider_id, slot_ids, amount, currency, state, reject_reason, booking_id, lease_expires_at, created_at, updated_at
FROM checkouts
WHERE intent_id = $1`

type CheckoutReadStore struct {
	db db.DBTX
}

func NewCheckoutReadStore(db db.DBTX) *CheckoutReadStore {
	return &CheckoutReadStore{db: db}
}

func (r *CheckoutReadStore) FindByIntentID(ctx context.Context, intentID string) (*queries.CheckoutView, error) {
	var (
		view                 queries.CheckoutView
		slotIDs              []pgtype.UUID
		rejectReason         pgtype.Text
		bookingID            pgtype.UUID
		leaseExpiresAt       pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectCheckoutView, intentID).Scan(
		&view.IntentID, &view.StudentID, &view.ProviderID, &slotIDs,
		&view.AmountCents, &view.Currency, &view.State,
		&rejectReason, &bookingID, &leaseExpiresAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "checkout not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find checkout", err)
	}

	view.SlotIDs = pgconv.UUIDsFromPgtype(slotIDs)
	view.RejectReason = pgconv.StringPtrFromPgtype(rejectReason)
	view.BookingID = pgconv.UUIDPtrFromPgtype(bookingID)
	view.LeaseExpiresAt = pgconv.TimePtrFromPgtype(leaseExpiresAt)
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	view.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &view, nil
}
