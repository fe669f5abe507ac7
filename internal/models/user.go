package models

import "time"

// UserRole represents the closed set of application roles.
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleHead           UserRole = "head"
	RoleHRAssistant    UserRole = "hr_assistant"
	RoleClassModerator UserRole = "class_moderator"
	RoleTeacher        UserRole = "teacher"
	RoleStaff          UserRole = "staff"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleHead, RoleHRAssistant, RoleClassModerator, RoleTeacher, RoleStaff:
		return true
	default:
		return false
	}
}

// UserStatus represents the account lifecycle state. Only active users
// may authenticate.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusBanned    UserStatus = "banned"
	StatusPending   UserStatus = "pending"
	StatusSuspended UserStatus = "suspended"
)

// Valid returns true when the status is a supported value.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBanned, StatusPending, StatusSuspended:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64      `db:"id" json:"id"`
	UniqueID     string     `db:"unique_id" json:"unique_id"`
	Name         string     `db:"name" json:"name"`
	Email        *string    `db:"email" json:"email,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	DepartmentID *int64     `db:"department_id" json:"department_id,omitempty"`
	ClassID      *int64     `db:"class_id" json:"class_id,omitempty"`
	Status       UserStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role         *UserRole
	Status       *UserStatus
	DepartmentID *int64
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
