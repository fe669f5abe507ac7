package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/attendance-api/internal/models"
)

// ErrStatusChanged is returned when a state transition finds the row no
// longer pending, i.e. another reviewer or the requester got there first.
var ErrStatusChanged = errors.New("leave request is no longer pending")

const leaveColumns = `id, user_id, leave_type, from_date, to_date, reason, status, reviewer_id, reviewed_at, comments, created_at, updated_at`

const leaveDetailColumns = `l.id, l.user_id, l.leave_type, l.from_date, l.to_date, l.reason, l.status,
	l.reviewer_id, l.reviewed_at, l.comments, l.created_at, l.updated_at,
	u.name AS user_name, u.unique_id AS user_unique_id, u.department_id AS user_department_id`

// LeaveRepository handles persistence for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository creates a new repository instance.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new leave request in the pending state.
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	now := time.Now().UTC()
	req.Status = models.LeavePending
	req.CreatedAt = now
	req.UpdatedAt = now

	const query = `INSERT INTO leave_requests (user_id, leave_type, from_date, to_date, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		req.UserID, req.LeaveType, req.FromDate, req.ToDate, req.Reason, req.Status, req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// FindByID returns one leave request with requester metadata.
func (r *LeaveRepository) FindByID(ctx context.Context, id int64) (*models.LeaveRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.id = $1`, leaveDetailColumns)

	var req models.LeaveRequestDetail
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find leave request by id: %w", err)
	}
	return &req, nil
}

// ListByUser returns a user's leave requests newest first.
func (r *LeaveRepository) ListByUser(ctx context.Context, userID int64) ([]models.LeaveRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests WHERE user_id = $1 ORDER BY created_at DESC`, leaveColumns)

	var rows []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list leave requests by user: %w", err)
	}
	return rows, nil
}

// ListPending returns all pending requests, oldest first so reviewers
// work the queue in submission order.
func (r *LeaveRepository) ListPending(ctx context.Context) ([]models.LeaveRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.status = $1
		ORDER BY l.created_at ASC`, leaveDetailColumns)

	var rows []models.LeaveRequestDetail
	if err := r.db.SelectContext(ctx, &rows, query, models.LeavePending); err != nil {
		return nil, fmt.Errorf("list pending leave requests: %w", err)
	}
	return rows, nil
}

// ListPendingByDepartment returns pending requests from users of one
// department, oldest first.
func (r *LeaveRepository) ListPendingByDepartment(ctx context.Context, departmentID int64) ([]models.LeaveRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.status = $1 AND u.department_id = $2
		ORDER BY l.created_at ASC`, leaveDetailColumns)

	var rows []models.LeaveRequestDetail
	if err := r.db.SelectContext(ctx, &rows, query, models.LeavePending, departmentID); err != nil {
		return nil, fmt.Errorf("list pending leave requests by department: %w", err)
	}
	return rows, nil
}

// Transition moves a request from pending into a terminal state. The
// status guard in the WHERE clause makes concurrent reviews race-safe:
// only one transition can observe the pending row. A cancel is the
// requester's own move, so it never stamps the review columns.
func (r *LeaveRepository) Transition(ctx context.Context, id int64, to models.LeaveStatus, reviewerID *int64, comments *string) error {
	now := time.Now().UTC()

	var (
		result sql.Result
		err    error
	)
	if to == models.LeaveCancelled {
		const query = `UPDATE leave_requests
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4`
		result, err = r.db.ExecContext(ctx, query, to, now, id, models.LeavePending)
	} else {
		const query = `UPDATE leave_requests
			SET status = $1, reviewer_id = $2, reviewed_at = $3, comments = $4, updated_at = $5
			WHERE id = $6 AND status = $7`
		result, err = r.db.ExecContext(ctx, query, to, reviewerID, now, comments, now, id, models.LeavePending)
	}
	if err != nil {
		return fmt.Errorf("transition leave request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition leave request: %w", err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// CountByStatus returns how many requests are in the given state,
// optionally scoped to one department's users.
func (r *LeaveRepository) CountByStatus(ctx context.Context, status models.LeaveStatus, departmentID *int64) (int, error) {
	query := `SELECT COUNT(*) FROM leave_requests l JOIN users u ON u.id = l.user_id WHERE l.status = $1`
	args := []interface{}{status}

	if departmentID != nil {
		args = append(args, *departmentID)
		query += fmt.Sprintf(" AND u.department_id = $%d", len(args))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count leave requests by status: %w", err)
	}
	return count, nil
}
