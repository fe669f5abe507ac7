package models

import "time"

// Major represents a major belonging to a department.
type Major struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ShortName    string    `db:"short_name" json:"short_name"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MajorDetail extends Major with the department short name for display.
type MajorDetail struct {
	Major
	DepartmentShortName string `db:"department_short_name" json:"department_short_name"`
}
