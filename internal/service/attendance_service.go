package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/rbac"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
	"github.com/campushq/attendance-api/pkg/export"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, att *models.Attendance) error
	ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]models.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error)
	ListByDepartment(ctx context.Context, departmentID int64, from, to *time.Time) ([]models.AttendanceRecord, error)
	SummaryByUser(ctx context.Context, userID int64, from, to time.Time) (models.AttendanceSummary, error)
}

type attendanceUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// MarkAttendanceRequest records one user's status for one date.
type MarkAttendanceRequest struct {
	UserID int64                   `json:"user_id" validate:"required,gt=0"`
	Date   string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
	Notes  *string                 `json:"notes"`
}

// RollCallEntry pairs a markable user with their status for the day.
// Status is nil when nobody has marked the user yet.
type RollCallEntry struct {
	User   models.UserInfo          `json:"user"`
	Status *models.AttendanceStatus `json:"status"`
	Notes  *string                  `json:"notes,omitempty"`
}

// AttendanceService implements daily attendance marking and reads.
type AttendanceService struct {
	repo      attendanceRepository
	users     attendanceUserRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService creates an AttendanceService. cache may be nil
// when caching is disabled.
func NewAttendanceService(repo attendanceRepository, users attendanceUserRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Mark records a status for one user and date. Only the HR assistant
// and the class moderator may mark, and only for their covered role.
// Marking the same user and date again overwrites the earlier status.
func (s *AttendanceService) Mark(ctx context.Context, actorRole models.UserRole, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	targetRole, ok := rbac.MarkableRole(actorRole)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot mark attendance")
	}

	target, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if target.Role != targetRole {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user is outside the marker's scope")
	}
	if target.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "user is not active")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	att := &models.Attendance{
		UserID: req.UserID,
		Date:   date,
		Status: req.Status,
		Notes:  req.Notes,
	}
	if err := s.repo.Upsert(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	// Cached dashboards count today's marks, so a new mark makes them stale.
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)

	s.logger.Info("attendance marked",
		zap.Int64("user_id", att.UserID),
		zap.String("date", req.Date),
		zap.String("status", string(att.Status)),
	)
	return att, nil
}

// RollCall lists every active user the actor can mark, merged with the
// statuses already recorded for the date.
func (s *AttendanceService) RollCall(ctx context.Context, actorRole models.UserRole, date time.Time) ([]RollCallEntry, error) {
	targetRole, ok := rbac.MarkableRole(actorRole)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot mark attendance")
	}

	users, err := s.users.ListActiveByRole(ctx, targetRole)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	byUser := make(map[int64]models.AttendanceRecord, len(records))
	for _, rec := range records {
		byUser[rec.UserID] = rec
	}

	entries := make([]RollCallEntry, 0, len(users))
	for i := range users {
		user := users[i]
		entry := RollCallEntry{User: userInfo(&user)}
		if rec, ok := byUser[user.ID]; ok {
			status := rec.Status
			entry.Status = &status
			entry.Notes = rec.Notes
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListMine returns the caller's own attendance rows, newest first.
func (s *AttendanceService) ListMine(ctx context.Context, userID int64, from, to *time.Time) ([]models.Attendance, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	rows, err := s.repo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, nil
}

// ListDepartment returns attendance of a department's active members.
// The head of department sees only their own department.
func (s *AttendanceService) ListDepartment(ctx context.Context, departmentID int64, from, to *time.Time) ([]models.AttendanceRecord, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	rows, err := s.repo.ListByDepartment(ctx, departmentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, nil
}

// SummaryMine aggregates the caller's attendance over a date range.
func (s *AttendanceService) SummaryMine(ctx context.Context, userID int64, from, to time.Time) (models.AttendanceSummary, error) {
	summary, err := s.repo.SummaryByUser(ctx, userID, from, to)
	if err != nil {
		return models.AttendanceSummary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return summary, nil
}

// ExportDepartment renders a department's attendance rows as a dataset
// ready for CSV or PDF output.
func (s *AttendanceService) ExportDepartment(ctx context.Context, departmentID int64, from, to *time.Time) (export.Dataset, error) {
	rows, err := s.ListDepartment(ctx, departmentID, from, to)
	if err != nil {
		return export.Dataset{}, err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "ID", "Name", "Role", "Status", "Notes"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, rec := range rows {
		notes := ""
		if rec.Notes != nil {
			notes = *rec.Notes
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":   rec.Date.Format("2006-01-02"),
			"ID":     rec.UserUniqueID,
			"Name":   rec.UserName,
			"Role":   string(rec.UserRole),
			"Status": string(rec.Status),
			"Notes":  notes,
		})
	}
	return dataset, nil
}
