package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushq/attendance-api/internal/models"
)

func performWithRole(t *testing.T, role *models.UserRole, allowed ...models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if role != nil {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: 1, Role: *role})
		}
		c.Next()
	}, RequireRoles(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	return rec
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	role := models.RoleHead
	rec := performWithRole(t, &role, models.RoleAdmin, models.RoleHead)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	role := models.RoleStaff
	rec := performWithRole(t, &role, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	rec := performWithRole(t, nil, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
