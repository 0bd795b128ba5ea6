package repository

import (
	"context"
	"time"

	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/infra/repository/converter"
	"tutor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	selectLiveSlots = `SELECT ` + converter.SlotColumns + `
FROM slots
WHERE id = ANY($1) AND retired_at IS NULL
ORDER BY start_time`

	// rows are locked in id order so concurrent commits over overlapping
	// selections queue up instead of deadlocking
	lockLiveSlots = `SELECT ` + converter.SlotColumns + `
FROM slots
WHERE id = ANY($1) AND retired_at IS NULL
ORDER BY id
FOR UPDATE`

	markSlotsBooked = `UPDATE slots
SET status = 'booked', booking_id = $2, lease_token = NULL, lease_expires_at = NULL, updated_at = now()
WHERE id = ANY($1) AND status = 'free' AND retired_at IS NULL`

	writeSlotLease = `UPDATE slots
SET lease_token = $2, lease_expires_at = $3, updated_at = now()
WHERE id = ANY($1) AND status = 'free' AND retired_at IS NULL`

	extendSlotLease = `UPDATE slots
SET lease_expires_at = $3, updated_at = now()
WHERE id = ANY($1) AND lease_token = $2 AND status = 'free' AND retired_at IS NULL`

	releaseSlotLease = `UPDATE slots
SET lease_token = NULL, lease_expires_at = NULL, updated_at = now()
WHERE id = ANY($1) AND lease_token = $2 AND retired_at IS NULL`

	insertSlot = `INSERT INTO slots (` + converter.SlotColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (provider_id, slot_date, start_time) WHERE retired_at IS NULL DO NOTHING`

	retireSlots = `UPDATE slots
SET retired_at = $2, lease_token = NULL, lease_expires_at = NULL, updated_at = now()
WHERE id = ANY($1) AND retired_at IS NULL`
)

type SlotRepository struct {
	db db.DBTX
}

func NewSlotRepository(db db.DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*slot.Slot, error) {
	slots, err := r.query(ctx, selectLiveSlots, pgconv.UUIDsToPgtype(ids))
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load slots", err)
	}
	if len(slots) != len(ids) {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "slot not found", nil)
	}
	return slots, nil
}

func (r *SlotRepository) MarkBooked(ctx context.Context, ids []uuid.UUID, bookingID uuid.UUID) error {
	locked, err := r.query(ctx, lockLiveSlots, pgconv.UUIDsToPgtype(ids))
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to lock slots", err)
	}
	if len(locked) != len(ids) {
		return infra.WrapRepoErr(infra.KindConflict, "slot retired before commit", nil)
	}
	for _, s := range locked {
		if !s.IsFree() {
			return infra.WrapRepoErr(infra.KindConflict, "slot already booked", nil)
		}
	}

	tag, err := r.db.Exec(ctx, markSlotsBooked, pgconv.UUIDsToPgtype(ids), bookingID)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to mark slots booked", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		// unreachable while the row locks are held
		return infra.WrapRepoErr(infra.KindConflict, "slot changed under lock", nil)
	}
	return nil
}

func (r *SlotRepository) WriteLease(ctx context.Context, ids []uuid.UUID, lease slot.Lease) error {
	_, err := r.db.Exec(ctx, writeSlotLease,
		pgconv.UUIDsToPgtype(ids),
		lease.Token(),
		pgconv.TimeToPgtype(lease.ExpiresAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to write lease", err)
	}
	return nil
}

func (r *SlotRepository) ExtendLease(ctx context.Context, ids []uuid.UUID, lease slot.Lease) (int64, error) {
	tag, err := r.db.Exec(ctx, extendSlotLease,
		pgconv.UUIDsToPgtype(ids),
		lease.Token(),
		pgconv.TimeToPgtype(lease.ExpiresAt()),
	)
	if err != nil {
		return 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to extend lease", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) ReleaseLease(ctx context.Context, ids []uuid.UUID, token uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, releaseSlotLease, pgconv.UUIDsToPgtype(ids), token)
	if err != nil {
		return 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to release lease", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) Publish(ctx context.Context, slots []*slot.Slot) (int64, error) {
	batch := &pgx.Batch{}
	for _, s := range slots {
		batch.Queue(insertSlot, converter.SlotInsertArgs(s)...)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	var inserted int64
	for range slots {
		tag, err := br.Exec()
		if err != nil {
			return 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to publish slot", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// Reissue retires first so the partial unique index admits the replacement rows.
func (r *SlotRepository) Reissue(ctx context.Context, ids []uuid.UUID, now time.Time) ([]*slot.Slot, error) {
	current, err := r.query(ctx, lockLiveSlots, pgconv.UUIDsToPgtype(ids))
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to lock slots", err)
	}
	if len(current) != len(ids) {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "slot not found", nil)
	}

	if _, err = r.db.Exec(ctx, retireSlots, pgconv.UUIDsToPgtype(ids), pgconv.TimeToPgtype(now)); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to retire slots", err)
	}

	fresh := make([]*slot.Slot, 0, len(current))
	for _, s := range current {
		ns := s.Reissue()
		tag, err := r.db.Exec(ctx, insertSlot, converter.SlotInsertArgs(ns)...)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to insert reissued slot", err)
		}
		if tag.RowsAffected() != 1 {
			return nil, infra.WrapRepoErr(infra.KindConflict, "window already republished", nil)
		}
		fresh = append(fresh, ns)
	}
	// keep the caller's order
	return orderByIDs(fresh, current, ids), nil
}

func (r *SlotRepository) query(ctx context.Context, sql string, args ...any) ([]*slot.Slot, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*slot.Slot
	for rows.Next() {
		s, err := converter.ScanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func orderByIDs(fresh, old []*slot.Slot, ids []uuid.UUID) []*slot.Slot {
	byOld := make(map[uuid.UUID]*slot.Slot, len(old))
	for i, s := range old {
		byOld[s.ID()] = fresh[i]
	}
	out := make([]*slot.Slot, 0, len(ids))
	for _, id := range ids {
		if s, ok := byOld[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
