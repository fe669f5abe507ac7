package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/repository"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type mockLeaveRepo struct {
	requests map[int64]*models.LeaveRequestDetail
	nextID   int64
}

func (m *mockLeaveRepo) Create(ctx context.Context, req *models.LeaveRequest) error {
	if m.requests == nil {
		m.requests = make(map[int64]*models.LeaveRequestDetail)
	}
	m.nextID++
	req.ID = m.nextID
	now := time.Now().UTC()
	req.Status = models.LeavePending
	req.CreatedAt = now
	req.UpdatedAt = now
	m.requests[req.ID] = &models.LeaveRequestDetail{LeaveRequest: *req}
	return nil
}

func (m *mockLeaveRepo) FindByID(ctx context.Context, id int64) (*models.LeaveRequestDetail, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (m *mockLeaveRepo) ListByUser(ctx context.Context, userID int64) ([]models.LeaveRequest, error) {
	var out []models.LeaveRequest
	for _, req := range m.requests {
		if req.UserID == userID {
			out = append(out, req.LeaveRequest)
		}
	}
	return out, nil
}

func (m *mockLeaveRepo) ListPending(ctx context.Context) ([]models.LeaveRequestDetail, error) {
	var out []models.LeaveRequestDetail
	for _, req := range m.requests {
		if req.Status == models.LeavePending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockLeaveRepo) ListPendingByDepartment(ctx context.Context, departmentID int64) ([]models.LeaveRequestDetail, error) {
	var out []models.LeaveRequestDetail
	for _, req := range m.requests {
		if req.Status == models.LeavePending && req.DepartmentID != nil && *req.DepartmentID == departmentID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockLeaveRepo) Transition(ctx context.Context, id int64, to models.LeaveStatus, reviewerID *int64, comments *string) error {
	req, ok := m.requests[id]
	if !ok || req.Status != models.LeavePending {
		return repository.ErrStatusChanged
	}
	req.Status = to
	if to != models.LeaveCancelled {
		now := time.Now().UTC()
		req.ReviewerID = reviewerID
		req.ReviewedAt = &now
		req.Comments = comments
	}
	return nil
}

func submitLeave(t *testing.T, svc *LeaveService, userID int64) *models.LeaveRequest {
	t.Helper()
	req, err := svc.Submit(context.Background(), userID, SubmitLeaveRequest{
		LeaveType: "annual",
		FromDate:  "2025-07-01",
		ToDate:    "2025-07-03",
		Reason:    "family visit",
	})
	require.NoError(t, err)
	return req
}

func headClaims(departmentID int64) *models.JWTClaims {
	return &models.JWTClaims{UserID: 99, Role: models.RoleHead, DepartmentID: &departmentID}
}

func TestSubmitStartsPending(t *testing.T) {
	repo := &mockLeaveRepo{}
	svc := NewLeaveService(repo, nil, validator.New(), zap.NewNop())

	req := submitLeave(t, svc, 7)
	assert.Equal(t, models.LeavePending, req.Status)
	assert.Nil(t, req.ReviewerID)
	assert.Nil(t, req.ReviewedAt)
}

func TestSubmitRejectsReversedRange(t *testing.T) {
	svc := NewLeaveService(&mockLeaveRepo{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), 7, SubmitLeaveRequest{
		LeaveType: "annual",
		FromDate:  "2025-07-03",
		ToDate:    "2025-07-01",
		Reason:    "family visit",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLeaveWritesInvalidateDashboardCache(t *testing.T) {
	cacheRepo := &recordingCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, 0, nil, true)
	svc := NewLeaveService(&mockLeaveRepo{}, cacheSvc, validator.New(), zap.NewNop())

	req := submitLeave(t, svc, 7)
	reviewer := &models.JWTClaims{UserID: 99, Role: models.RoleHead}
	_, err := svc.Approve(context.Background(), reviewer, req.ID, ReviewLeaveRequest{})
	require.NoError(t, err)

	second := submitLeave(t, svc, 7)
	_, err = svc.Cancel(context.Background(), 7, second.ID)
	require.NoError(t, err)

	// Submit, approve, submit, cancel each sweep the cached dashboards.
	assert.Equal(t, []string{"dash:*", "dash:*", "dash:*", "dash:*"}, cacheRepo.patterns)
}

func TestRejectRequiresComments(t *testing.T) {
	repo := &mockLeaveRepo{}
	svc := NewLeaveService(repo, nil, validator.New(), zap.NewNop())
	req := submitLeave(t, svc, 7)

	_, err := svc.Reject(context.Background(), headClaims(0), req.ID, ReviewLeaveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	// Nothing was written. The request is still pending.
	stored := repo.requests[req.ID]
	assert.Equal(t, models.LeavePending, stored.Status)

	comments := "insufficient coverage"
	updated, err := svc.Reject(context.Background(), &models.JWTClaims{UserID: 99, Role: models.RoleAdmin}, req.ID, ReviewLeaveRequest{Comments: &comments})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, updated.Status)
	require.NotNil(t, updated.ReviewerID)
	assert.Equal(t, int64(99), *updated.ReviewerID)
	assert.NotNil(t, updated.ReviewedAt)
}

func TestTerminalStatesRejectFurtherTransitions(t *testing.T) {
	repo := &mockLeaveRepo{}
	svc := NewLeaveService(repo, nil, validator.New(), zap.NewNop())
	req := submitLeave(t, svc, 7)

	reviewer := &models.JWTClaims{UserID: 99, Role: models.RoleAdmin}
	_, err := svc.Approve(context.Background(), reviewer, req.ID, ReviewLeaveRequest{})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), reviewer, req.ID, ReviewLeaveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Cancel(context.Background(), 7, req.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCancelRequesterOnly(t *testing.T) {
	repo := &mockLeaveRepo{}
	svc := NewLeaveService(repo, nil, validator.New(), zap.NewNop())
	req := submitLeave(t, svc, 7)

	_, err := svc.Cancel(context.Background(), 8, req.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	cancelled, err := svc.Cancel(context.Background(), 7, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveCancelled, cancelled.Status)
	assert.Nil(t, cancelled.ReviewerID)
	assert.Nil(t, cancelled.ReviewedAt)
}

func TestHeadReviewScopedToDepartment(t *testing.T) {
	repo := &mockLeaveRepo{}
	svc := NewLeaveService(repo, nil, validator.New(), zap.NewNop())
	req := submitLeave(t, svc, 7)

	otherDept := int64(5)
	repo.requests[req.ID].DepartmentID = &otherDept

	_, err := svc.Approve(context.Background(), headClaims(3), req.ID, ReviewLeaveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Approve(context.Background(), headClaims(5), req.ID, ReviewLeaveRequest{})
	require.NoError(t, err)
}

func TestListPendingDepartmentFallback(t *testing.T) {
	repo := &mockLeaveRepo{}
	svc := NewLeaveService(repo, nil, validator.New(), zap.NewNop())
	first := submitLeave(t, svc, 7)
	submitLeave(t, svc, 8)

	dept := int64(3)
	repo.requests[first.ID].DepartmentID = &dept

	scoped, err := svc.ListPending(context.Background(), &dept)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	// A head without a department sees the global queue.
	global, err := svc.ListPending(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, global, 2)
}
