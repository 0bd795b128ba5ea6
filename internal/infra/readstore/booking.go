package readstore

import (
	"context"
	"time"

	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/pkg/pgconv"
	"tutor-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	selectBookingView = `SELECT id, student_id, provider_id, status, price_amount, currency, intent_id, created_at, updated_at, canceled_at
FROM bookings
WHERE id = $1`

	// retired rows are included so canceled bookings still show their windows
	selectBookedWindows = `SELECT s.id, s.start_time, s.end_time
FROM bookings b
JOIN slots s ON s.id = ANY(b.slot_ids)
WHERE b.id = $1
ORDER BY s.start_time`

	selectBookingsByStudent = `SELECT b.id, b.provider_id, b.status, b.price_amount, b.currency, w.first_start, w.last_end, b.created_at
FROM bookings b
CROSS JOIN LATERAL (
    SELECT min(s.start_time) AS first_start, max(s.end_time) AS last_end
    FROM slots s
    WHERE s.id = ANY(b.slot_ids)
) w
WHERE b.student_id = $1
  AND ($2::timestamptz IS NULL OR (b.created_at, b.id) < ($2::timestamptz, $3::uuid))
ORDER BY b.created_at DESC, b.id DESC
LIMIT $4`
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var (
		view       queries.BookingView
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
		canceledAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectBookingView, id).Scan(
		&view.ID, &view.StudentID, &view.ProviderID, &view.Status,
		&view.AmountCents, &view.Currency, &view.IntentID,
		&createdAt, &updatedAt, &canceledAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "booking not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find booking by ID", err)
	}
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	view.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	view.CanceledAt = pgconv.TimePtrFromPgtype(canceledAt)

	windows, err := r.windows(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Slots = windows
	return &view, nil
}

func (r *BookingReadStore) windows(ctx context.Context, bookingID uuid.UUID) ([]queries.BookedWindow, error) {
	rows, err := r.db.Query(ctx, selectBookedWindows, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load booked windows", err)
	}
	defer rows.Close()

	var out []queries.BookedWindow
	for rows.Next() {
		var w queries.BookedWindow
		var start, end pgtype.Timestamptz
		if err := rows.Scan(&w.SlotID, &start, &end); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan booked window", err)
		}
		w.StartTime = start.Time.UTC()
		w.EndTime = end.Time.UTC()
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate booked windows", err)
	}
	return out, nil
}

func (r *BookingReadStore) FindByStudentAfter(ctx context.Context, studentID uuid.UUID, afterTime *time.Time, afterID *uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, selectBookingsByStudent,
		studentID,
		pgconv.TimePtrToPgtype(afterTime),
		pgconv.UUIDPtrToPgtype(afterID),
		limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list bookings", err)
	}
	defer rows.Close()

	var out []*queries.BookingListItem
	for rows.Next() {
		var (
			item                  queries.BookingListItem
			start, end, createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&item.ID, &item.ProviderID, &item.Status, &item.AmountCents, &item.Currency, &start, &end, &createdAt); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan booking", err)
		}
		item.StartTime = start.Time.UTC()
		item.EndTime = end.Time.UTC()
		item.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate bookings", err)
	}
	return out, nil
}
