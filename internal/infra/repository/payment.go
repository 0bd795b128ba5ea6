package repository

import (
	"context"

	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/pkg/pgconv"
)

const insertPaymentRecord = `INSERT INTO payment_records (id, booking_id, amount, currency, status, gateway_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(db db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, rec *payment.Record) error {
	_, err := r.db.Exec(ctx, insertPaymentRecord,
		rec.ID(),
		rec.BookingID(),
		rec.Amount().Amount(),
		rec.Amount().Currency(),
		rec.Status().String(),
		rec.GatewayRef(),
		pgconv.TimeToPgtype(rec.CreatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create payment record", err)
	}
	return nil
}
