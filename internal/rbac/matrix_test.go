package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/attendance-api/internal/models"
)

func destinations(items []NavItem) []Destination {
	out := make([]Destination, len(items))
	for i, item := range items {
		out[i] = item.Destination
	}
	return out
}

func TestDestinationsForAdmin(t *testing.T) {
	items := DestinationsFor(models.RoleAdmin)
	assert.Equal(t, []Destination{
		DestDashboard,
		DestUserManagement,
		DestAcademicClass,
		DestAcademicSchedule,
		DestConfigDepartment,
		DestConfigMajor,
		DestConfigSubject,
	}, destinations(items))
}

func TestDestinationsForStaff(t *testing.T) {
	items := DestinationsFor(models.RoleStaff)
	assert.Equal(t, []Destination{DestDashboard, DestLeaveRequests, DestAttendance}, destinations(items))
}

func TestDestinationsForHead(t *testing.T) {
	items := DestinationsFor(models.RoleHead)
	assert.Equal(t, []Destination{DestDashboard, DestLeaveRequests, DestAttendance}, destinations(items))
}

func TestDestinationsForMarkers(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleHRAssistant, models.RoleClassModerator} {
		items := DestinationsFor(role)
		assert.Equal(t, []Destination{DestDashboard, DestCheckAttendance}, destinations(items), string(role))
	}
}

func TestDestinationsForUnknownRole(t *testing.T) {
	assert.Empty(t, DestinationsFor(models.UserRole("intern")))
}

func TestNavGroups(t *testing.T) {
	items := DestinationsFor(models.RoleAdmin)
	groups := make(map[Destination]string)
	for _, item := range items {
		groups[item.Destination] = item.Group
	}
	assert.Equal(t, "Academic", groups[DestAcademicClass])
	assert.Equal(t, "Academic", groups[DestAcademicSchedule])
	assert.Equal(t, "Configuration", groups[DestConfigSubject])
	assert.Empty(t, groups[DestDashboard])
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(models.RoleAdmin, DestUserManagement))
	assert.False(t, Allowed(models.RoleStaff, DestUserManagement))
	assert.True(t, Allowed(models.RoleStaff, DestLeaveRequests))
	assert.False(t, Allowed(models.RoleHRAssistant, DestLeaveRequests))
	assert.False(t, Allowed(models.RoleAdmin, Destination("reports")))
}

func TestDashboardVariantFor(t *testing.T) {
	cases := map[models.UserRole]DashboardVariant{
		models.RoleAdmin:          VariantAdmin,
		models.RoleHead:           VariantHead,
		models.RoleHRAssistant:    VariantHR,
		models.RoleClassModerator: VariantClassMonitor,
		models.RoleTeacher:        VariantEmployee,
		models.RoleStaff:          VariantEmployee,
	}
	for role, want := range cases {
		assert.Equal(t, want, DashboardVariantFor(role), string(role))
	}
	assert.Equal(t, VariantWelcome, DashboardVariantFor(models.UserRole("guest")))
}

func TestMarkableRole(t *testing.T) {
	target, ok := MarkableRole(models.RoleHRAssistant)
	require.True(t, ok)
	assert.Equal(t, models.RoleStaff, target)

	target, ok = MarkableRole(models.RoleClassModerator)
	require.True(t, ok)
	assert.Equal(t, models.RoleTeacher, target)

	_, ok = MarkableRole(models.RoleHead)
	assert.False(t, ok)
	_, ok = MarkableRole(models.RoleAdmin)
	assert.False(t, ok)
}
