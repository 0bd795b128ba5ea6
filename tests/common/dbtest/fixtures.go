//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tutor-booking/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InsertSlots writes free slots straight into the store.
func InsertSlots(t *testing.T, db DBLike, slots ...*slot.Slot) {
	t.Helper()

	ctx := context.Background()
	for _, s := range slots {
		_, err := db.Exec(ctx, `
			INSERT INTO slots (id, provider_id, slot_date, start_time, end_time, status)
			VALUES ($1, $2, $3, $4, $5, 'free')`,
			s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime())
		require.NoError(t, err)
	}
}

type SlotRow struct {
	Status    string
	BookingID *uuid.UUID
	Retired   bool
	Leased    bool
}

func GetSlotRow(t *testing.T, db DBLike, id uuid.UUID) SlotRow {
	t.Helper()

	var row SlotRow
	err := db.QueryRow(context.Background(), `
		SELECT status, booking_id, retired_at IS NOT NULL, lease_token IS NOT NULL
		FROM slots WHERE id = $1`, id).
		Scan(&row.Status, &row.BookingID, &row.Retired, &row.Leased)
	require.NoError(t, err)
	return row
}

func CountRows(t *testing.T, db DBLike, table, where string, args ...any) int {
	t.Helper()

	q := "SELECT count(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(context.Background(), q, args...).Scan(&n))
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
