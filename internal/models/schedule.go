package models

import "time"

// Weekday names accepted for schedule slots.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ValidWeekday reports whether the day is one of the seven weekday names.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Schedule represents a recurring class session slot. Times are
// time-of-day values in "HH:MM" form.
type Schedule struct {
	ID           int64     `db:"id" json:"id"`
	ClassID      int64     `db:"class_id" json:"class_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	Room         *string   `db:"room" json:"room,omitempty"`
	DayOfWeek    string    `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     int       `db:"semester" json:"semester"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleDetail extends Schedule with class and subject labels.
type ScheduleDetail struct {
	Schedule
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}
