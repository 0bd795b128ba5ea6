//go:build unit

package infra_test

import (
	"errors"
	"fmt"
	"testing"

	"tutor-booking/internal/infra"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	t.Run("keeps requested kind", func(t *testing.T) {
		err := infra.WrapRepoErr(infra.KindConflict, "slots already booked", nil)
		assert.True(t, infra.IsKind(err, infra.KindConflict))
		assert.False(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("unique violation becomes duplicate key", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505"}
		err := infra.WrapRepoErr(infra.KindDBFailure, "insert booking", pgErr)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))

		var target *pgconn.PgError
		assert.True(t, errors.As(err, &target))
	})

	t.Run("survives further wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", infra.WrapRepoErr(infra.KindNotFound, "slot", nil))
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}
