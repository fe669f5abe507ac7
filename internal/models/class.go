package models

import "time"

// Class represents an academic class within a major.
type Class struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	MajorID      int64     `db:"major_id" json:"major_id"`
	Year         int       `db:"year" json:"year"`
	Semester     int       `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Group        string    `db:"class_group" json:"group"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with the major name for display.
type ClassDetail struct {
	Class
	MajorName string `db:"major_name" json:"major_name"`
}
