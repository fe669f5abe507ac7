package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushq/attendance-api/internal/middleware"
	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/rbac"
)

func navigationFor(t *testing.T, role models.UserRole) NavigationPayload {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewNavigationHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/navigation", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 1, Role: role})

	handler.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data NavigationPayload `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestNavigationStaffSeesEmployeeScreens(t *testing.T) {
	payload := navigationFor(t, models.RoleStaff)

	var destinations []rbac.Destination
	for _, item := range payload.Destinations {
		destinations = append(destinations, item.Destination)
	}
	assert.Equal(t, []rbac.Destination{rbac.DestDashboard, rbac.DestLeaveRequests, rbac.DestAttendance}, destinations)
	assert.Equal(t, rbac.VariantEmployee, payload.DashboardVariant)
}

func TestNavigationAdminSeesManagementScreens(t *testing.T) {
	payload := navigationFor(t, models.RoleAdmin)

	assert.Len(t, payload.Destinations, 7)
	assert.Equal(t, rbac.VariantAdmin, payload.DashboardVariant)

	seen := map[rbac.Destination]bool{}
	for _, item := range payload.Destinations {
		seen[item.Destination] = true
	}
	assert.True(t, seen[rbac.DestUserManagement])
	assert.True(t, seen[rbac.DestConfigSubject])
	assert.False(t, seen[rbac.DestCheckAttendance])
}

func TestNavigationMarkerSeesCheckAttendance(t *testing.T) {
	payload := navigationFor(t, models.RoleHRAssistant)

	var destinations []rbac.Destination
	for _, item := range payload.Destinations {
		destinations = append(destinations, item.Destination)
	}
	assert.Equal(t, []rbac.Destination{rbac.DestDashboard, rbac.DestCheckAttendance}, destinations)
	assert.Equal(t, rbac.VariantHR, payload.DashboardVariant)
}

func TestNavigationRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewNavigationHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/navigation", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
