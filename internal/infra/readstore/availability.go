package readstore

import (
	"context"
	"iter"
	"time"

	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/infra/repository/converter"
	"tutor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const streamFreeSlots = `SELECT ` + converter.SlotColumns + `
FROM slots
WHERE provider_id = $1 AND slot_date = $2 AND status = 'free' AND retired_at IS NULL
ORDER BY start_time`

type AvailabilityReadStore struct {
	db db.DBTX
}

func NewAvailabilityReadStore(db db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: db}
}

// StreamFree keeps the rows cursor open while the caller ranges; stopping
// early closes it.
func (r *AvailabilityReadStore) StreamFree(ctx context.Context, providerID uuid.UUID, date time.Time) iter.Seq2[*slot.Slot, error] {
	return func(yield func(*slot.Slot, error) bool) {
		rows, err := r.db.Query(ctx, streamFreeSlots, providerID, pgconv.DateToPgtype(date))
		if err != nil {
			yield(nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query availability", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			s, err := converter.ScanSlot(rows)
			if err != nil {
				yield(nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan slot", err))
				return
			}
			if !yield(s, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate availability", err))
		}
	}
}
