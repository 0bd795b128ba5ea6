//go:build unit

package middleware_test

import (
	"net/http"
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

func newAuthRouter(svc *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m := middleware.NewAuthMiddleware(usecase.NewTokenValidator(svc))

	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "role": role.String()})
	})
	r.GET("/student", m.RequireAuth(), m.RequireRole(jwt.RoleStudent), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/no-auth-state", m.RequireRole(jwt.RoleStudent), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)
	r := newAuthRouter(svc)

	t.Run("valid bearer token", func(t *testing.T) {
		userID := uuid.New()
		token, err := svc.GenerateToken(userID, jwt.RoleStudent)
		require.NoError(t, err)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, token)

		var body map[string]string
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "student", body["role"])
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Access token required")
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := jwt.NewService("secret", -time.Minute).GenerateToken(uuid.New(), jwt.RoleStudent)
		require.NoError(t, err)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, token)
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := svc.GenerateToken(uuid.New(), jwt.Role("admin"))
		require.NoError(t, err)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/me", nil, token)
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Invalid or expired token")
	})
}

func TestRequireRole(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)
	r := newAuthRouter(svc)

	t.Run("allowed role", func(t *testing.T) {
		token, err := svc.GenerateToken(uuid.New(), jwt.RoleStudent)
		require.NoError(t, err)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/student", nil, token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		token, err := svc.GenerateToken(uuid.New(), jwt.RoleTutor)
		require.NoError(t, err)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/student", nil, token)
		httptest.AssertErrorResponse(t, rec, http.StatusForbidden, "Insufficient permissions")
	})

	t.Run("without RequireAuth", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/no-auth-state", nil, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
