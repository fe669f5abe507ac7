package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/rbac"
)

type mockDashUsers struct {
	total  int
	active []models.User
}

func (m *mockDashUsers) Count(ctx context.Context) (int, error) { return m.total, nil }
func (m *mockDashUsers) ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return m.active, nil
}

type mockDashAttendance struct {
	byDate models.AttendanceSummary
	byUser models.AttendanceSummary
}

func (m *mockDashAttendance) SummaryByDate(ctx context.Context, date time.Time, departmentID *int64, role *models.UserRole) (models.AttendanceSummary, error) {
	return m.byDate, nil
}

func (m *mockDashAttendance) SummaryByUser(ctx context.Context, userID int64, from, to time.Time) (models.AttendanceSummary, error) {
	return m.byUser, nil
}

type mockDashLeave struct {
	counts   map[models.LeaveStatus]int
	requests []models.LeaveRequest
}

func (m *mockDashLeave) CountByStatus(ctx context.Context, status models.LeaveStatus, departmentID *int64) (int, error) {
	return m.counts[status], nil
}

func (m *mockDashLeave) ListByUser(ctx context.Context, userID int64) ([]models.LeaveRequest, error) {
	return m.requests, nil
}

type staticCounter int

func (c staticCounter) Count(ctx context.Context) (int, error) { return int(c), nil }

func testDashboardService(users *mockDashUsers, att *mockDashAttendance, leave *mockDashLeave) *DashboardService {
	return NewDashboardService(DashboardServiceParams{
		Users:       users,
		Attendance:  att,
		Leave:       leave,
		Departments: staticCounter(2),
		Majors:      staticCounter(4),
		Classes:     staticCounter(8),
		Subjects:    staticCounter(16),
		Logger:      zap.NewNop(),
	})
}

func TestDashboardAdminCounts(t *testing.T) {
	svc := testDashboardService(&mockDashUsers{total: 120}, &mockDashAttendance{}, &mockDashLeave{})

	payload, cached, err := svc.For(context.Background(), &models.JWTClaims{UserID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, string(rbac.VariantAdmin), payload.Variant)
	require.NotNil(t, payload.Admin)
	assert.Equal(t, 120, payload.Admin.Users)
	assert.Equal(t, 2, payload.Admin.Departments)
	assert.Equal(t, 16, payload.Admin.Subjects)
}

func TestDashboardMarkerProgress(t *testing.T) {
	users := &mockDashUsers{active: []models.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	att := &mockDashAttendance{byDate: models.AttendanceSummary{Present: 2, Total: 2}}
	svc := testDashboardService(users, att, &mockDashLeave{})

	payload, _, err := svc.For(context.Background(), &models.JWTClaims{UserID: 5, Role: models.RoleHRAssistant})
	require.NoError(t, err)
	require.NotNil(t, payload.Marker)
	assert.Equal(t, models.RoleStaff, payload.Marker.TargetRole)
	assert.Equal(t, 3, payload.Marker.ActiveUsers)
	assert.Equal(t, 2, payload.Marker.Marked)
	assert.Equal(t, 1, payload.Marker.Unmarked)
}

func TestDashboardEmployeeLeaveCounts(t *testing.T) {
	leave := &mockDashLeave{requests: []models.LeaveRequest{
		{Status: models.LeavePending},
		{Status: models.LeaveApproved},
		{Status: models.LeaveApproved},
		{Status: models.LeaveCancelled},
	}}
	att := &mockDashAttendance{byUser: models.AttendanceSummary{Present: 15, Late: 1, Total: 16}}
	svc := testDashboardService(&mockDashUsers{}, att, leave)

	payload, _, err := svc.For(context.Background(), &models.JWTClaims{UserID: 7, Role: models.RoleStaff})
	require.NoError(t, err)
	require.NotNil(t, payload.Employee)
	assert.Equal(t, 16, payload.Employee.MonthSummary.Total)
	assert.Equal(t, 1, payload.Employee.Leave.Pending)
	assert.Equal(t, 2, payload.Employee.Leave.Approved)
	assert.Equal(t, 1, payload.Employee.Leave.Cancelled)
}

func TestDashboardUnknownRoleGetsWelcome(t *testing.T) {
	svc := testDashboardService(&mockDashUsers{}, &mockDashAttendance{}, &mockDashLeave{})

	payload, _, err := svc.For(context.Background(), &models.JWTClaims{UserID: 7, Name: "Ghost", Role: models.UserRole("auditor")})
	require.NoError(t, err)
	assert.Equal(t, string(rbac.VariantWelcome), payload.Variant)
	assert.NotEmpty(t, payload.Message)
	assert.Nil(t, payload.Admin)
}
