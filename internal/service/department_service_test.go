package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type mockDepartmentRepo struct {
	departments map[int64]*models.Department
	majors      map[int64]int
	nextID      int64
	deleted     []int64
}

func (m *mockDepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	out := make([]models.Department, 0, len(m.departments))
	for _, d := range m.departments {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockDepartmentRepo) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *d
	return &copied, nil
}

func (m *mockDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	if m.departments == nil {
		m.departments = make(map[int64]*models.Department)
	}
	m.nextID++
	department.ID = m.nextID
	stored := *department
	m.departments[department.ID] = &stored
	return nil
}

func (m *mockDepartmentRepo) Update(ctx context.Context, department *models.Department) error {
	stored := *department
	m.departments[department.ID] = &stored
	return nil
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, id int64) error {
	delete(m.departments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDepartmentRepo) CountMajors(ctx context.Context, id int64) (int, error) {
	return m.majors[id], nil
}

func testDepartmentService(repo *mockDepartmentRepo) *DepartmentService {
	return NewDepartmentService(repo, validator.New(), zap.NewNop())
}

func TestCreateDepartmentAppearsInList(t *testing.T) {
	repo := &mockDepartmentRepo{}
	svc := testDepartmentService(repo)

	created, err := svc.Create(context.Background(), DepartmentRequest{Name: "Engineering", ShortName: "ENG"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	departments, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, created.ID, departments[0].ID)
	assert.Equal(t, "Engineering", departments[0].Name)
}

func TestCreateDepartmentTrimsAndValidates(t *testing.T) {
	repo := &mockDepartmentRepo{}
	svc := testDepartmentService(repo)

	_, err := svc.Create(context.Background(), DepartmentRequest{Name: "Engineering"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	created, err := svc.Create(context.Background(), DepartmentRequest{Name: "  Engineering  ", ShortName: " ENG "})
	require.NoError(t, err)
	assert.Equal(t, "Engineering", created.Name)
	assert.Equal(t, "ENG", created.ShortName)
}

func TestDeleteDepartmentWithMajorsRefused(t *testing.T) {
	repo := &mockDepartmentRepo{}
	svc := testDepartmentService(repo)

	created, err := svc.Create(context.Background(), DepartmentRequest{Name: "Engineering", ShortName: "ENG"})
	require.NoError(t, err)

	repo.majors = map[int64]int{created.ID: 2}
	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)

	repo.majors[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, []int64{created.ID}, repo.deleted)
}

func TestGetDepartmentNotFound(t *testing.T) {
	svc := testDepartmentService(&mockDepartmentRepo{})

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
