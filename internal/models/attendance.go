package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// Attendance represents a single daily attendance row. At most one row
// exists per (user_id, date); re-marking the same pair updates in place.
type Attendance struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord extends the row with user metadata for listings.
type AttendanceRecord struct {
	Attendance
	UserName     string   `db:"user_name" json:"user_name"`
	UserUniqueID string   `db:"user_unique_id" json:"user_unique_id"`
	UserRole     UserRole `db:"user_role" json:"user_role"`
}

// AttendanceSummary aggregates per-status counts over a set of rows.
type AttendanceSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Total   int `json:"total"`
}

// Tally adds a row's status to the summary.
func (s *AttendanceSummary) Tally(status AttendanceStatus) {
	s.Add(status, 1)
}

// Add adds n rows with the given status to the summary.
func (s *AttendanceSummary) Add(status AttendanceStatus, n int) {
	switch status {
	case AttendancePresent:
		s.Present += n
	case AttendanceAbsent:
		s.Absent += n
	case AttendanceLate:
		s.Late += n
	case AttendanceExcused:
		s.Excused += n
	}
	s.Total += n
}
