package models

import "time"

// LeaveStatus represents the state of a leave request.
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible.
// approved, rejected and cancelled are final states.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveApproved || s == LeaveRejected || s == LeaveCancelled
}

// LeaveRequest represents a leave request submitted by an employee.
type LeaveRequest struct {
	ID         int64       `db:"id" json:"id"`
	UserID     int64       `db:"user_id" json:"user_id"`
	LeaveType  string      `db:"leave_type" json:"leave_type"`
	FromDate   time.Time   `db:"from_date" json:"from_date"`
	ToDate     time.Time   `db:"to_date" json:"to_date"`
	Reason     string      `db:"reason" json:"reason"`
	Status     LeaveStatus `db:"status" json:"status"`
	ReviewerID *int64      `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Comments   *string     `db:"comments" json:"comments,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveRequestDetail extends the row with requester metadata for
// reviewer listings.
type LeaveRequestDetail struct {
	LeaveRequest
	UserName     string `db:"user_name" json:"user_name"`
	UserUniqueID string `db:"user_unique_id" json:"user_unique_id"`
	DepartmentID *int64 `db:"user_department_id" json:"user_department_id,omitempty"`
}
