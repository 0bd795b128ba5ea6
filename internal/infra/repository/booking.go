package repository

import (
	"context"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/infra/repository/converter"
	"tutor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertBooking = `INSERT INTO bookings (` + converter.BookingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	selectBookingForUpdate = `SELECT ` + converter.BookingColumns + `
FROM bookings
WHERE id = $1
FOR UPDATE`

	updateBookingStatus = `UPDATE bookings
SET status = $2, updated_at = $3, canceled_at = $4
WHERE id = $1`
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(db db.DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	if _, err := r.db.Exec(ctx, insertBooking, converter.BookingInsertArgs(b)...); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := converter.ScanBooking(r.db.QueryRow(ctx, selectBookingForUpdate, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "booking not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find booking", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	tag, err := r.db.Exec(ctx, updateBookingStatus,
		b.ID(),
		b.Status().String(),
		pgconv.TimeToPgtype(b.UpdatedAt()),
		pgconv.TimePtrToPgtype(b.CanceledAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindNotFound, "booking not found", nil)
	}
	return nil
}
