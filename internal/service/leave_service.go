package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/repository"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type leaveRepository interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	FindByID(ctx context.Context, id int64) (*models.LeaveRequestDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]models.LeaveRequest, error)
	ListPending(ctx context.Context) ([]models.LeaveRequestDetail, error)
	ListPendingByDepartment(ctx context.Context, departmentID int64) ([]models.LeaveRequestDetail, error)
	Transition(ctx context.Context, id int64, to models.LeaveStatus, reviewerID *int64, comments *string) error
}

// SubmitLeaveRequest is the payload for filing a leave request.
type SubmitLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required,max=32"`
	FromDate  string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate    string `json:"to_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required"`
}

// ReviewLeaveRequest carries the reviewer's optional or required comments.
type ReviewLeaveRequest struct {
	Comments *string `json:"comments"`
}

// LeaveService implements the leave request state machine.
type LeaveService struct {
	repo      leaveRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService creates a LeaveService. cache may be nil when
// caching is disabled.
func NewLeaveService(repo leaveRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Submit files a new request in the pending state. The range is
// inclusive and the end date must not come before the start date.
func (s *LeaveService) Submit(ctx context.Context, userID int64, req SubmitLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}

	fromDate, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from_date must be YYYY-MM-DD")
	}
	toDate, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must be YYYY-MM-DD")
	}
	if toDate.Before(fromDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must not be before from_date")
	}

	request := &models.LeaveRequest{
		UserID:    userID,
		LeaveType: strings.TrimSpace(req.LeaveType),
		FromDate:  fromDate,
		ToDate:    toDate,
		Reason:    strings.TrimSpace(req.Reason),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}

	// Pending counts feed the cached dashboards.
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)

	s.logger.Info("leave request submitted",
		zap.Int64("request_id", request.ID),
		zap.Int64("user_id", userID),
	)
	return request, nil
}

// ListMine returns the caller's request history, newest first.
func (s *LeaveService) ListMine(ctx context.Context, userID int64) ([]models.LeaveRequest, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return rows, nil
}

// ListPending returns the reviewer's pending queue. A head with a
// department sees only that department's requests; a head without one
// falls back to the global queue.
func (s *LeaveService) ListPending(ctx context.Context, reviewerDepartmentID *int64) ([]models.LeaveRequestDetail, error) {
	var (
		rows []models.LeaveRequestDetail
		err  error
	)
	if reviewerDepartmentID != nil {
		rows, err = s.repo.ListPendingByDepartment(ctx, *reviewerDepartmentID)
	} else {
		rows, err = s.repo.ListPending(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending leave requests")
	}
	return rows, nil
}

// Approve moves a pending request to approved. Comments are optional.
func (s *LeaveService) Approve(ctx context.Context, reviewer *models.JWTClaims, id int64, req ReviewLeaveRequest) (*models.LeaveRequestDetail, error) {
	return s.review(ctx, reviewer, id, models.LeaveApproved, req.Comments)
}

// Reject moves a pending request to rejected. Comments are required so
// the requester always learns why.
func (s *LeaveService) Reject(ctx context.Context, reviewer *models.JWTClaims, id int64, req ReviewLeaveRequest) (*models.LeaveRequestDetail, error) {
	if req.Comments == nil || strings.TrimSpace(*req.Comments) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection requires comments")
	}
	return s.review(ctx, reviewer, id, models.LeaveRejected, req.Comments)
}

// Cancel withdraws a pending request. Only the original requester may
// cancel, and only while the request is still pending.
func (s *LeaveService) Cancel(ctx context.Context, actorID int64, id int64) (*models.LeaveRequestDetail, error) {
	request, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.UserID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requester can cancel")
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request is already settled")
	}

	if err := s.repo.Transition(ctx, id, models.LeaveCancelled, nil, nil); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "leave request is already settled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel leave request")
	}

	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
	return s.get(ctx, id)
}

func (s *LeaveService) review(ctx context.Context, reviewer *models.JWTClaims, id int64, to models.LeaveStatus, comments *string) (*models.LeaveRequestDetail, error) {
	request, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request is already settled")
	}
	if request.UserID == reviewer.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reviewers cannot review their own requests")
	}
	if reviewer.Role == models.RoleHead && reviewer.DepartmentID != nil {
		if request.DepartmentID == nil || *request.DepartmentID != *reviewer.DepartmentID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside the reviewer's department")
		}
	}

	reviewerID := reviewer.UserID
	if err := s.repo.Transition(ctx, id, to, &reviewerID, comments); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "leave request is already settled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review leave request")
	}

	_ = s.cache.Invalidate(ctx, dashboardCachePattern)

	s.logger.Info("leave request reviewed",
		zap.Int64("request_id", id),
		zap.Int64("reviewer_id", reviewer.UserID),
		zap.String("status", string(to)),
	)
	return s.get(ctx, id)
}

func (s *LeaveService) get(ctx context.Context, id int64) (*models.LeaveRequestDetail, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	return request, nil
}
