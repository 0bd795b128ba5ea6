package repository

import (
	"context"
	"time"

	"tutor-booking/internal/infra"
	"tutor-booking/internal/infra/db"
	"tutor-booking/internal/pkg/pgconv"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// MaxOutboxAttempts parks an event as failed after this many publish errors.
const MaxOutboxAttempts = 10

const (
	insertOutboxEvent = `INSERT INTO outbox_events (id, kind, dedupe_key, payload, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (kind, dedupe_key) DO NOTHING`

	claimOutboxEvents = `SELECT id, kind, dedupe_key, payload, attempts, created_at, refunded_at
FROM outbox_events
WHERE status = 'pending'
ORDER BY created_at
LIMIT $1
FOR UPDATE SKIP LOCKED`

	markOutboxPublished = `UPDATE outbox_events
SET status = 'published', published_at = $2
WHERE id = $1`

	markOutboxRefunded = `UPDATE outbox_events
SET refunded_at = $2
WHERE id = $1 AND refunded_at IS NULL`

	markOutboxFailed = `UPDATE outbox_events
SET attempts = attempts + 1,
    last_error = $2,
    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE status END
WHERE id = $1`
)

type OutboxRepository struct {
	db db.DBTX
}

func NewOutboxRepository(db db.DBTX) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue is a no-op when an event with the same kind and dedupe key exists.
func (r *OutboxRepository) Enqueue(ctx context.Context, kind, dedupeKey string, payload []byte, now time.Time) error {
	_, err := r.db.Exec(ctx, insertOutboxEvent, uuid.New(), kind, dedupeKey, payload, pgconv.TimeToPgtype(now))
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to enqueue outbox event", err)
	}
	return nil
}

func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int32) ([]shared.OutboxEvent, error) {
	rows, err := r.db.Query(ctx, claimOutboxEvents, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to claim outbox events", err)
	}
	defer rows.Close()

	var out []shared.OutboxEvent
	for rows.Next() {
		var (
			ev         shared.OutboxEvent
			refundedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.DedupeKey, &ev.Payload, &ev.Attempts, &ev.CreatedAt, &refundedAt); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan outbox event", err)
		}
		ev.RefundedAt = pgconv.TimePtrFromPgtype(refundedAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate outbox events", err)
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) error {
	if _, err := r.db.Exec(ctx, markOutboxPublished, id, pgconv.TimeToPgtype(now)); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to mark outbox event published", err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if _, err := r.db.Exec(ctx, markOutboxFailed, id, reason, MaxOutboxAttempts); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to record outbox failure", err)
	}
	return nil
}

func (r *OutboxRepository) MarkRefunded(ctx context.Context, id uuid.UUID, now time.Time) error {
	if _, err := r.db.Exec(ctx, markOutboxRefunded, id, pgconv.TimeToPgtype(now)); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to record outbox refund", err)
	}
	return nil
}
