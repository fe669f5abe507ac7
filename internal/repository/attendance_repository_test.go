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

func TestUpsertAttendance(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	created := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO attendance").
		WithArgs(int64(5), sqlmock.AnyArg(), string(models.AttendanceLate), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), created))

	att := &models.Attendance{UserID: 5, Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Status: models.AttendanceLate}
	require.NoError(t, repo.Upsert(context.Background(), att))
	assert.Equal(t, int64(9), att.ID)
	// Re-marking keeps the original row's creation time.
	assert.Equal(t, created, att.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAttendanceByUserWithRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow(int64(2), int64(5), now, string(models.AttendancePresent), nil, now, now).
		AddRow(int64(1), int64(5), now.AddDate(0, 0, -1), string(models.AttendanceAbsent), nil, now, now)
	mock.ExpectQuery(`SELECT .+ FROM attendance WHERE user_id = \$1 AND date >= \$2 AND date <= \$3 ORDER BY date DESC`).
		WillReturnRows(rows)

	from := now.AddDate(0, 0, -7)
	to := now
	list, err := repo.ListByUser(context.Background(), 5, &from, &to)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.AttendancePresent, list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow(string(models.AttendancePresent), 12).
		AddRow(string(models.AttendanceAbsent), 2).
		AddRow(string(models.AttendanceExcused), 1)
	mock.ExpectQuery(`SELECT a.status, COUNT\(\*\) AS count`).
		WillReturnRows(rows)

	summary, err := repo.SummaryByDate(context.Background(), time.Now(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Present)
	assert.Equal(t, 2, summary.Absent)
	assert.Equal(t, 0, summary.Late)
	assert.Equal(t, 1, summary.Excused)
	assert.Equal(t, 15, summary.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAttendanceByDepartmentScopesActiveUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`WHERE u.department_id = \$1 AND u.status = \$2`).
		WithArgs(int64(3), string(models.StatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "status", "notes", "created_at", "updated_at", "user_name", "user_unique_id", "user_role"}))

	list, err := repo.ListByDepartment(context.Background(), 3, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
