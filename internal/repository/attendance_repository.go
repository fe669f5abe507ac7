package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/attendance-api/internal/models"
)

const attendanceColumns = `id, user_id, date, status, notes, created_at, updated_at`

// AttendanceRepository handles persistence for daily attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new repository instance.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the row for (user_id, date) in one atomic
// statement. The unique constraint on the natural key makes concurrent
// markers converge on a single row; the last write wins.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	const query = `INSERT INTO attendance (user_id, date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date)
		DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query,
		att.UserID, att.Date, att.Status, att.Notes, att.CreatedAt, att.UpdatedAt,
	).Scan(&att.ID, &att.CreatedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListByUser returns a user's attendance rows newest first, optionally
// bounded by an inclusive date range.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE user_id = $1`, attendanceColumns)
	args := []interface{}{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"

	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by user: %w", err)
	}
	return rows, nil
}

// ListByDate returns all rows for one calendar date with user labels.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT a.id, a.user_id, a.date, a.status, a.notes, a.created_at, a.updated_at,
		u.name AS user_name, u.unique_id AS user_unique_id, u.role AS user_role
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.date = $1
		ORDER BY u.name ASC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return rows, nil
}

// ListByDepartment returns the attendance of all active users in a
// department, newest first. A department with zero active users yields
// an empty slice.
func (r *AttendanceRepository) ListByDepartment(ctx context.Context, departmentID int64, from, to *time.Time) ([]models.AttendanceRecord, error) {
	query := `SELECT a.id, a.user_id, a.date, a.status, a.notes, a.created_at, a.updated_at,
		u.name AS user_name, u.unique_id AS user_unique_id, u.role AS user_role
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE u.department_id = $1 AND u.status = $2`
	args := []interface{}{departmentID, models.StatusActive}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND a.date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND a.date <= $%d", len(args))
	}
	query += " ORDER BY a.date DESC, u.name ASC"

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by department: %w", err)
	}
	return rows, nil
}

// statusCountRow scans grouped status counts.
type statusCountRow struct {
	Status models.AttendanceStatus `db:"status"`
	Count  int                     `db:"count"`
}

// SummaryByDate aggregates per-status counts for one date, optionally
// scoped to a department or a role of the marked users.
func (r *AttendanceRepository) SummaryByDate(ctx context.Context, date time.Time, departmentID *int64, role *models.UserRole) (models.AttendanceSummary, error) {
	query := `SELECT a.status, COUNT(*) AS count
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.date = $1`
	args := []interface{}{date}

	if departmentID != nil {
		args = append(args, *departmentID)
		query += fmt.Sprintf(" AND u.department_id = $%d", len(args))
	}
	if role != nil {
		args = append(args, *role)
		query += fmt.Sprintf(" AND u.role = $%d", len(args))
	}
	query += " GROUP BY a.status"

	var rows []statusCountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return models.AttendanceSummary{}, fmt.Errorf("summarise attendance by date: %w", err)
	}

	var summary models.AttendanceSummary
	for _, row := range rows {
		summary.Add(row.Status, row.Count)
	}
	return summary, nil
}

// SummaryByUser aggregates a user's per-status counts over a date range.
func (r *AttendanceRepository) SummaryByUser(ctx context.Context, userID int64, from, to time.Time) (models.AttendanceSummary, error) {
	const query = `SELECT status, COUNT(*) AS count FROM attendance
		WHERE user_id = $1 AND date >= $2 AND date <= $3 GROUP BY status`
	var rows []statusCountRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return models.AttendanceSummary{}, fmt.Errorf("summarise attendance by user: %w", err)
	}

	var summary models.AttendanceSummary
	for _, row := range rows {
		summary.Add(row.Status, row.Count)
	}
	return summary, nil
}
