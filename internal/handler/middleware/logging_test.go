//go:build unit

package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"tutor-booking/internal/handler/middleware"
	"tutor-booking/internal/pkg/jwt"
	"tutor-booking/internal/usecase"
	"tutor-booking/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(buf *bytes.Buffer, svc *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(slog.New(slog.NewJSONHandler(buf, nil))))
	m := middleware.NewAuthMiddleware(usecase.NewTokenValidator(svc))

	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLogger(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)

	t.Run("generates a request id when none is sent", func(t *testing.T) {
		var buf bytes.Buffer
		r := newLoggedRouter(&buf, svc)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/open", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)
		id := rec.Header().Get("X-Request-ID")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())

		entry := lastLogLine(t, &buf)
		assert.Equal(t, id, entry["request_id"])
		assert.Equal(t, "/open", entry["path"])
		assert.Equal(t, "INFO", entry["level"])
		assert.NotContains(t, entry, "user_id")
	})

	t.Run("keeps the caller's request id", func(t *testing.T) {
		var buf bytes.Buffer
		r := newLoggedRouter(&buf, svc)

		req := nethttptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := nethttptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-42", lastLogLine(t, &buf)["request_id"])
	})

	t.Run("records the authenticated user", func(t *testing.T) {
		var buf bytes.Buffer
		r := newLoggedRouter(&buf, svc)
		userID := uuid.New()
		token, err := svc.GenerateToken(userID, jwt.RoleStudent)
		require.NoError(t, err)

		httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, token)

		entry := lastLogLine(t, &buf)
		assert.Equal(t, userID.String(), entry["user_id"])
		assert.Equal(t, "student", entry["role"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		var buf bytes.Buffer
		r := newLoggedRouter(&buf, svc)

		httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, "")

		entry := lastLogLine(t, &buf)
		assert.Equal(t, "WARN", entry["level"])
		assert.EqualValues(t, http.StatusUnauthorized, entry["status_code"])
	})
}
