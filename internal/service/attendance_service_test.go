package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type mockAttendanceRepo struct {
	rows    map[string]*models.Attendance
	nextID  int64
	byDate  []models.AttendanceRecord
	byDept  []models.AttendanceRecord
	summary models.AttendanceSummary
}

func attKey(userID int64, date time.Time) string {
	return fmt.Sprintf("%d#%s", userID, date.Format("2006-01-02"))
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, att *models.Attendance) error {
	if m.rows == nil {
		m.rows = make(map[string]*models.Attendance)
	}
	key := attKey(att.UserID, att.Date)
	if existing, ok := m.rows[key]; ok {
		existing.Status = att.Status
		existing.Notes = att.Notes
		existing.UpdatedAt = att.UpdatedAt
		att.ID = existing.ID
		att.CreatedAt = existing.CreatedAt
		return nil
	}
	m.nextID++
	att.ID = m.nextID
	stored := *att
	m.rows[key] = &stored
	return nil
}

func (m *mockAttendanceRepo) ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	return m.byDate, nil
}

func (m *mockAttendanceRepo) ListByDepartment(ctx context.Context, departmentID int64, from, to *time.Time) ([]models.AttendanceRecord, error) {
	return m.byDept, nil
}

func (m *mockAttendanceRepo) SummaryByUser(ctx context.Context, userID int64, from, to time.Time) (models.AttendanceSummary, error) {
	return m.summary, nil
}

type mockAttendanceUsers struct {
	users map[int64]*models.User
}

func (m *mockAttendanceUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAttendanceUsers) ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == role && u.Status == models.StatusActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

type recordingCacheRepo struct {
	patterns []string
}

func (m *recordingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *recordingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *recordingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func testAttendanceService(repo *mockAttendanceRepo, users *mockAttendanceUsers) *AttendanceService {
	return NewAttendanceService(repo, users, nil, validator.New(), zap.NewNop())
}

func TestMarkReMarkOverwrites(t *testing.T) {
	repo := &mockAttendanceRepo{}
	users := &mockAttendanceUsers{users: map[int64]*models.User{
		7: {ID: 7, Role: models.RoleStaff, Status: models.StatusActive},
	}}
	svc := testAttendanceService(repo, users)

	first, err := svc.Mark(context.Background(), models.RoleHRAssistant, MarkAttendanceRequest{UserID: 7, Date: "2025-06-01", Status: models.AttendancePresent})
	require.NoError(t, err)

	second, err := svc.Mark(context.Background(), models.RoleHRAssistant, MarkAttendanceRequest{UserID: 7, Date: "2025-06-01", Status: models.AttendanceLate})
	require.NoError(t, err)

	// Same (user, date) pair converges on one row with the later status.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.AttendanceLate, second.Status)
	assert.Len(t, repo.rows, 1)
}

func TestMarkInvalidatesDashboardCache(t *testing.T) {
	cacheRepo := &recordingCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, 0, nil, true)
	users := &mockAttendanceUsers{users: map[int64]*models.User{
		7: {ID: 7, Role: models.RoleStaff, Status: models.StatusActive},
	}}
	svc := NewAttendanceService(&mockAttendanceRepo{}, users, cacheSvc, validator.New(), zap.NewNop())

	_, err := svc.Mark(context.Background(), models.RoleHRAssistant, MarkAttendanceRequest{UserID: 7, Date: "2025-06-01", Status: models.AttendancePresent})
	require.NoError(t, err)
	assert.Equal(t, []string{"dash:*"}, cacheRepo.patterns)
}

func TestMarkScopeEnforcement(t *testing.T) {
	users := &mockAttendanceUsers{users: map[int64]*models.User{
		7: {ID: 7, Role: models.RoleStaff, Status: models.StatusActive},
		8: {ID: 8, Role: models.RoleTeacher, Status: models.StatusActive},
	}}
	svc := testAttendanceService(&mockAttendanceRepo{}, users)

	// A class moderator covers teachers, not staff.
	_, err := svc.Mark(context.Background(), models.RoleClassModerator, MarkAttendanceRequest{UserID: 7, Date: "2025-06-01", Status: models.AttendancePresent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Roles outside the two markers cannot mark at all.
	_, err = svc.Mark(context.Background(), models.RoleAdmin, MarkAttendanceRequest{UserID: 8, Date: "2025-06-01", Status: models.AttendancePresent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMarkInactiveTarget(t *testing.T) {
	users := &mockAttendanceUsers{users: map[int64]*models.User{
		7: {ID: 7, Role: models.RoleStaff, Status: models.StatusSuspended},
	}}
	svc := testAttendanceService(&mockAttendanceRepo{}, users)

	_, err := svc.Mark(context.Background(), models.RoleHRAssistant, MarkAttendanceRequest{UserID: 7, Date: "2025-06-01", Status: models.AttendancePresent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRollCallMergesStatuses(t *testing.T) {
	status := models.AttendancePresent
	repo := &mockAttendanceRepo{byDate: []models.AttendanceRecord{
		{Attendance: models.Attendance{UserID: 7, Status: status}},
	}}
	users := &mockAttendanceUsers{users: map[int64]*models.User{
		7: {ID: 7, Name: "Alice", Role: models.RoleStaff, Status: models.StatusActive},
		9: {ID: 9, Name: "Bob", Role: models.RoleStaff, Status: models.StatusActive},
	}}
	svc := testAttendanceService(repo, users)

	entries, err := svc.RollCall(context.Background(), models.RoleHRAssistant, time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[int64]RollCallEntry{}
	for _, e := range entries {
		byID[e.User.ID] = e
	}
	require.NotNil(t, byID[7].Status)
	assert.Equal(t, models.AttendancePresent, *byID[7].Status)
	assert.Nil(t, byID[9].Status)
}

func TestListMineRejectsReversedRange(t *testing.T) {
	svc := testAttendanceService(&mockAttendanceRepo{}, &mockAttendanceUsers{})

	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -3)
	_, err := svc.ListMine(context.Background(), 7, &from, &to)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListDepartmentEmptyIsNotAnError(t *testing.T) {
	svc := testAttendanceService(&mockAttendanceRepo{}, &mockAttendanceUsers{})

	rows, err := svc.ListDepartment(context.Background(), 3, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExportDepartmentDataset(t *testing.T) {
	notes := "arrived 09:30"
	repo := &mockAttendanceRepo{byDept: []models.AttendanceRecord{
		{
			Attendance:   models.Attendance{UserID: 7, Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Status: models.AttendanceLate, Notes: &notes},
			UserName:     "Alice",
			UserUniqueID: "S-3001",
			UserRole:     models.RoleStaff,
		},
	}}
	svc := testAttendanceService(repo, &mockAttendanceUsers{})

	dataset, err := svc.ExportDepartment(context.Background(), 3, nil, nil)
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "2025-06-01", dataset.Rows[0]["Date"])
	assert.Equal(t, "late", dataset.Rows[0]["Status"])
	assert.Equal(t, "arrived 09:30", dataset.Rows[0]["Notes"])
}
