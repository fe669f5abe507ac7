package models

import "time"

// AdminDashboard carries system-wide entity counts.
type AdminDashboard struct {
	Users       int `json:"users"`
	Departments int `json:"departments"`
	Majors      int `json:"majors"`
	Classes     int `json:"classes"`
	Subjects    int `json:"subjects"`
}

// HeadDashboard summarises one department's leave queue and today's
// attendance.
type HeadDashboard struct {
	PendingLeave    int               `json:"pending_leave"`
	ApprovedLeave   int               `json:"approved_leave"`
	RejectedLeave   int               `json:"rejected_leave"`
	TodayAttendance AttendanceSummary `json:"today_attendance"`
}

// MarkerDashboard shows a marker's roll-call progress for today.
type MarkerDashboard struct {
	TargetRole   UserRole          `json:"target_role"`
	ActiveUsers  int               `json:"active_users"`
	Marked       int               `json:"marked"`
	Unmarked     int               `json:"unmarked"`
	TodaySummary AttendanceSummary `json:"today_summary"`
}

// LeaveCounts groups a user's requests by state.
type LeaveCounts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}

// EmployeeDashboard summarises the caller's own month.
type EmployeeDashboard struct {
	MonthSummary AttendanceSummary `json:"month_summary"`
	Leave        LeaveCounts       `json:"leave"`
}

// DashboardPayload is the role-shaped dashboard response. Exactly one
// of the variant sections is set; unknown roles get the welcome text.
type DashboardPayload struct {
	Variant     string             `json:"variant"`
	GeneratedAt time.Time          `json:"generated_at"`
	Admin       *AdminDashboard    `json:"admin,omitempty"`
	Head        *HeadDashboard     `json:"head,omitempty"`
	Marker      *MarkerDashboard   `json:"marker,omitempty"`
	Employee    *EmployeeDashboard `json:"employee,omitempty"`
	Message     string             `json:"message,omitempty"`
}
