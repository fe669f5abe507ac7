package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/attendance-api/internal/models"
)

func TestCreateDepartmentAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(`INSERT INTO departments \(name, short_name, created_at, updated_at\)`).
		WithArgs("Engineering", "ENG", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	department := &models.Department{Name: "Engineering", ShortName: "ENG"}
	err := repo.Create(context.Background(), department)
	require.NoError(t, err)

	assert.Equal(t, int64(5), department.ID)
	assert.False(t, department.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDepartmentsOrderedByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, name, short_name, created_at, updated_at FROM departments ORDER BY name ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "short_name", "created_at", "updated_at"}).
			AddRow(int64(2), "Arts", "ART", now, now).
			AddRow(int64(5), "Engineering", "ENG", now, now))

	departments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 2)

	assert.Equal(t, "Arts", departments[0].Name)
	assert.Equal(t, int64(5), departments[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountMajorsByDepartment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM majors WHERE department_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountMajors(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
