package repository

import (
	"context"
	"time"

	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/infra/repository/converter"
	"tutor-booking/internal/pkg/pgconv"
)

const (
	insertCheckout = `INSERT INTO checkouts (` + converter.CheckoutColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	selectCheckout = `SELECT ` + converter.CheckoutColumns + `
FROM checkouts
WHERE intent_id = $1`

	selectCheckoutForUpdate = `SELECT ` + converter.CheckoutColumns + `
FROM checkouts
WHERE intent_id = $1
FOR UPDATE`

	updateCheckout = `UPDATE checkouts
SET state = $2, reject_reason = $3, booking_id = $4, updated_at = $5
WHERE intent_id = $1`

	extendCheckoutLease = `UPDATE checkouts
SET lease_expires_at = $2, updated_at = $3
WHERE lease_token = $1 AND state IN ('LEASED', 'AWAITING_PAYMENT')`

	// SKIP LOCKED leaves attempts that are being settled right now alone
	selectLapsedCheckouts = `SELECT ` + converter.CheckoutColumns + `
FROM checkouts
WHERE state = 'AWAITING_PAYMENT' AND lease_expires_at <= $1
ORDER BY created_at
LIMIT $2
FOR UPDATE SKIP LOCKED`
)

type CheckoutRepository struct {
	db db.DBTX
}

func NewCheckoutRepository(db db.DBTX) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

func (r *CheckoutRepository) Create(ctx context.Context, a *checkout.Attempt) error {
	if _, err := r.db.Exec(ctx, insertCheckout, converter.CheckoutInsertArgs(a)...); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create checkout", err)
	}
	return nil
}

func (r *CheckoutRepository) FindByIntentID(ctx context.Context, intentID string) (*checkout.Attempt, error) {
	return r.find(ctx, selectCheckout, intentID)
}

func (r *CheckoutRepository) FindByIntentIDForUpdate(ctx context.Context, intentID string) (*checkout.Attempt, error) {
	return r.find(ctx, selectCheckoutForUpdate, intentID)
}

func (r *CheckoutRepository) find(ctx context.Context, sql, intentID string) (*checkout.Attempt, error) {
	a, err := converter.ScanCheckout(r.db.QueryRow(ctx, sql, intentID))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "checkout not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find checkout", err)
	}
	return a, nil
}

func (r *CheckoutRepository) Update(ctx context.Context, a *checkout.Attempt) error {
	tag, err := r.db.Exec(ctx, updateCheckout,
		a.IntentID(),
		a.State().String(),
		converter.RejectReasonText(a.RejectReason()),
		pgconv.UUIDPtrToPgtype(a.BookingID()),
		pgconv.TimeToPgtype(a.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update checkout", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindNotFound, "checkout not found", nil)
	}
	return nil
}

func (r *CheckoutRepository) ListLapsed(ctx context.Context, now time.Time, limit int32) ([]*checkout.Attempt, error) {
	rows, err := r.db.Query(ctx, selectLapsedCheckouts, pgconv.TimeToPgtype(now), limit)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list lapsed checkouts", err)
	}
	defer rows.Close()

	var out []*checkout.Attempt
	for rows.Next() {
		a, err := converter.ScanCheckout(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan checkout", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate checkouts", err)
	}
	return out, nil
}

func (r *CheckoutRepository) ExtendLease(ctx context.Context, lease slot.Lease, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, extendCheckoutLease,
		lease.Token(), pgconv.TimeToPgtype(lease.ExpiresAt()), pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to extend checkout lease", err)
	}
	return tag.RowsAffected(), nil
}
