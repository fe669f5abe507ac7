// Package rbac holds the static role-to-navigation matrix. It is pure:
// no state, no I/O, just exhaustive tables over the closed role and
// destination enums.
package rbac

import "github.com/campushq/attendance-api/internal/models"

// Destination names a screen the client router can show.
type Destination string

const (
	DestDashboard        Destination = "dashboard"
	DestUserManagement   Destination = "user-management"
	DestAcademicClass    Destination = "academic/class"
	DestAcademicSchedule Destination = "academic/schedule"
	DestConfigDepartment Destination = "configuration/department"
	DestConfigMajor      Destination = "configuration/major"
	DestConfigSubject    Destination = "configuration/subject"
	DestLeaveRequests    Destination = "leave-requests"
	DestAttendance       Destination = "attendance"
	DestCheckAttendance  Destination = "check-attendance"
)

// DashboardVariant selects which dashboard composition the root
// destination renders for a role.
type DashboardVariant string

const (
	VariantAdmin        DashboardVariant = "admin-dashboard"
	VariantHead         DashboardVariant = "head-dashboard"
	VariantHR           DashboardVariant = "hr-dashboard"
	VariantClassMonitor DashboardVariant = "class-monitor-dashboard"
	VariantEmployee     DashboardVariant = "employee-dashboard"
	VariantWelcome      DashboardVariant = "welcome"
)

// NavItem is one navigation entry, optionally grouped under a
// collapsible parent label.
type NavItem struct {
	Destination Destination `json:"destination"`
	Label       string      `json:"label"`
	Group       string      `json:"group,omitempty"`
}

// navTable is the ordered, authoritative destination table. Order here
// is the order destinations appear in the navigation payload.
var navTable = []struct {
	item  NavItem
	roles []models.UserRole
}{
	{
		item:  NavItem{Destination: DestDashboard, Label: "Dashboard"},
		roles: []models.UserRole{models.RoleAdmin, models.RoleHead, models.RoleHRAssistant, models.RoleClassModerator, models.RoleTeacher, models.RoleStaff},
	},
	{
		item:  NavItem{Destination: DestUserManagement, Label: "User Management"},
		roles: []models.UserRole{models.RoleAdmin},
	},
	{
		item:  NavItem{Destination: DestAcademicClass, Label: "Class Management", Group: "Academic"},
		roles: []models.UserRole{models.RoleAdmin},
	},
	{
		item:  NavItem{Destination: DestAcademicSchedule, Label: "Schedule Management", Group: "Academic"},
		roles: []models.UserRole{models.RoleAdmin},
	},
	{
		item:  NavItem{Destination: DestConfigDepartment, Label: "Department Management", Group: "Configuration"},
		roles: []models.UserRole{models.RoleAdmin},
	},
	{
		item:  NavItem{Destination: DestConfigMajor, Label: "Major Management", Group: "Configuration"},
		roles: []models.UserRole{models.RoleAdmin},
	},
	{
		item:  NavItem{Destination: DestConfigSubject, Label: "Subject Management", Group: "Configuration"},
		roles: []models.UserRole{models.RoleAdmin},
	},
	{
		item:  NavItem{Destination: DestLeaveRequests, Label: "Leave Requests"},
		roles: []models.UserRole{models.RoleHead, models.RoleTeacher, models.RoleStaff},
	},
	{
		item:  NavItem{Destination: DestAttendance, Label: "Attendance"},
		roles: []models.UserRole{models.RoleHead, models.RoleTeacher, models.RoleStaff},
	},
	{
		item:  NavItem{Destination: DestCheckAttendance, Label: "Check Attendance"},
		roles: []models.UserRole{models.RoleHRAssistant, models.RoleClassModerator},
	},
}

// DestinationsFor returns the ordered navigation items visible to the
// role. An unknown role sees nothing beyond what the table grants it,
// which is an empty list.
func DestinationsFor(role models.UserRole) []NavItem {
	items := make([]NavItem, 0, len(navTable))
	for _, entry := range navTable {
		for _, r := range entry.roles {
			if r == role {
				items = append(items, entry.item)
				break
			}
		}
	}
	return items
}

// Allowed reports whether the role may open the destination. An unknown
// destination is never allowed.
func Allowed(role models.UserRole, dest Destination) bool {
	for _, entry := range navTable {
		if entry.item.Destination != dest {
			continue
		}
		for _, r := range entry.roles {
			if r == role {
				return true
			}
		}
		return false
	}
	return false
}

// DashboardVariantFor maps a role to its dashboard composition. Any
// unrecognised role value falls back to the generic welcome panel
// rather than failing.
func DashboardVariantFor(role models.UserRole) DashboardVariant {
	switch role {
	case models.RoleAdmin:
		return VariantAdmin
	case models.RoleHead:
		return VariantHead
	case models.RoleHRAssistant:
		return VariantHR
	case models.RoleClassModerator:
		return VariantClassMonitor
	case models.RoleTeacher, models.RoleStaff:
		return VariantEmployee
	default:
		return VariantWelcome
	}
}

// MarkableRole returns the role of users an actor may mark attendance
// for: the HR assistant covers staff, the class moderator covers
// teachers. The second return is false for every other role.
func MarkableRole(actor models.UserRole) (models.UserRole, bool) {
	switch actor {
	case models.RoleHRAssistant:
		return models.RoleStaff, true
	case models.RoleClassModerator:
		return models.RoleTeacher, true
	default:
		return "", false
	}
}
