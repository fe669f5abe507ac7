package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/rbac"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

// Dashboard cache keys share the dash: prefix so writers can sweep
// every cached variant with one pattern delete.
const (
	dashboardCacheKeyFormat = "dash:%s:%d:%s"
	dashboardCachePattern   = "dash:*"
)

type dashboardUserRepository interface {
	Count(ctx context.Context) (int, error)
	ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type dashboardAttendanceRepository interface {
	SummaryByDate(ctx context.Context, date time.Time, departmentID *int64, role *models.UserRole) (models.AttendanceSummary, error)
	SummaryByUser(ctx context.Context, userID int64, from, to time.Time) (models.AttendanceSummary, error)
}

type dashboardLeaveRepository interface {
	CountByStatus(ctx context.Context, status models.LeaveStatus, departmentID *int64) (int, error)
	ListByUser(ctx context.Context, userID int64) ([]models.LeaveRequest, error)
}

type entityCounter interface {
	Count(ctx context.Context) (int, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users       dashboardUserRepository
	Attendance  dashboardAttendanceRepository
	Leave       dashboardLeaveRepository
	Departments entityCounter
	Majors      entityCounter
	Classes     entityCounter
	Subjects    entityCounter
	Cache       *CacheService
	Logger      *zap.Logger
	CacheTTL    time.Duration
}

// DashboardService composes the role-shaped dashboard payloads.
type DashboardService struct {
	users       dashboardUserRepository
	attendance  dashboardAttendanceRepository
	leave       dashboardLeaveRepository
	departments entityCounter
	majors      entityCounter
	classes     entityCounter
	subjects    entityCounter
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cacheTTL    time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		users:       params.Users,
		attendance:  params.Attendance,
		leave:       params.Leave,
		departments: params.Departments,
		majors:      params.Majors,
		classes:     params.Classes,
		subjects:    params.Subjects,
		cache:       params.Cache,
		logger:      logger,
		now:         time.Now,
		cacheTTL:    ttl,
	}
}

// For returns the dashboard for the caller's role. The second return
// reports whether the payload came out of the cache.
func (s *DashboardService) For(ctx context.Context, claims *models.JWTClaims) (*models.DashboardPayload, bool, error) {
	variant := rbac.DashboardVariantFor(claims.Role)
	today := s.now().UTC().Truncate(24 * time.Hour)

	cacheKey := fmt.Sprintf(dashboardCacheKeyFormat, variant, claims.UserID, today.Format("2006-01-02"))
	if s.cache != nil {
		var cached models.DashboardPayload
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	payload := &models.DashboardPayload{
		Variant:     string(variant),
		GeneratedAt: s.now().UTC(),
	}

	var err error
	switch variant {
	case rbac.VariantAdmin:
		payload.Admin, err = s.composeAdmin(ctx)
	case rbac.VariantHead:
		payload.Head, err = s.composeHead(ctx, claims.DepartmentID, today)
	case rbac.VariantHR, rbac.VariantClassMonitor:
		payload.Marker, err = s.composeMarker(ctx, claims.Role, today)
	case rbac.VariantEmployee:
		payload.Employee, err = s.composeEmployee(ctx, claims.UserID, today)
	default:
		payload.Message = fmt.Sprintf("Welcome, %s", claims.Name)
	}
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return payload, false, nil
}

func (s *DashboardService) composeAdmin(ctx context.Context) (*models.AdminDashboard, error) {
	dash := &models.AdminDashboard{}
	counts := []struct {
		counter entityCounter
		dest    *int
	}{
		{s.departments, &dash.Departments},
		{s.majors, &dash.Majors},
		{s.classes, &dash.Classes},
		{s.subjects, &dash.Subjects},
	}

	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	dash.Users = users

	for _, c := range counts {
		n, err := c.counter.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count entities")
		}
		*c.dest = n
	}
	return dash, nil
}

func (s *DashboardService) composeHead(ctx context.Context, departmentID *int64, today time.Time) (*models.HeadDashboard, error) {
	dash := &models.HeadDashboard{}

	for _, item := range []struct {
		status models.LeaveStatus
		dest   *int
	}{
		{models.LeavePending, &dash.PendingLeave},
		{models.LeaveApproved, &dash.ApprovedLeave},
		{models.LeaveRejected, &dash.RejectedLeave},
	} {
		n, err := s.leave.CountByStatus(ctx, item.status, departmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leave requests")
		}
		*item.dest = n
	}

	summary, err := s.attendance.SummaryByDate(ctx, today, departmentID, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	dash.TodayAttendance = summary
	return dash, nil
}

func (s *DashboardService) composeMarker(ctx context.Context, actorRole models.UserRole, today time.Time) (*models.MarkerDashboard, error) {
	targetRole, ok := rbac.MarkableRole(actorRole)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot mark attendance")
	}

	active, err := s.users.ListActiveByRole(ctx, targetRole)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	summary, err := s.attendance.SummaryByDate(ctx, today, nil, &targetRole)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}

	unmarked := len(active) - summary.Total
	if unmarked < 0 {
		unmarked = 0
	}
	return &models.MarkerDashboard{
		TargetRole:   targetRole,
		ActiveUsers:  len(active),
		Marked:       summary.Total,
		Unmarked:     unmarked,
		TodaySummary: summary,
	}, nil
}

func (s *DashboardService) composeEmployee(ctx context.Context, userID int64, today time.Time) (*models.EmployeeDashboard, error) {
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	summary, err := s.attendance.SummaryByUser(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}

	requests, err := s.leave.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}

	var counts models.LeaveCounts
	for _, req := range requests {
		switch req.Status {
		case models.LeavePending:
			counts.Pending++
		case models.LeaveApproved:
			counts.Approved++
		case models.LeaveRejected:
			counts.Rejected++
		case models.LeaveCancelled:
			counts.Cancelled++
		}
	}

	return &models.EmployeeDashboard{MonthSummary: summary, Leave: counts}, nil
}
