package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/attendance-api/internal/models"
)

const scheduleDetailColumns = `s.id, s.class_id, s.subject_id, s.room, s.day_of_week, s.start_time, s.end_time,
	s.academic_year, s.semester, s.created_at, s.updated_at,
	c.name AS class_name, sub.name AS subject_name, sub.code AS subject_code`

// ScheduleRepository handles persistence for schedule slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new repository instance.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns all schedules enriched with class and subject labels.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules s
		JOIN classes c ON c.id = s.class_id
		JOIN subjects sub ON sub.id = s.subject_id
		ORDER BY s.day_of_week ASC, s.start_time ASC`, scheduleDetailColumns)
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// ListByClass returns schedules for one class.
func (r *ScheduleRepository) ListByClass(ctx context.Context, classID int64) ([]models.ScheduleDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules s
		JOIN classes c ON c.id = s.class_id
		JOIN subjects sub ON sub.id = s.subject_id
		WHERE s.class_id = $1
		ORDER BY s.day_of_week ASC, s.start_time ASC`, scheduleDetailColumns)
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, classID); err != nil {
		return nil, fmt.Errorf("list schedules by class: %w", err)
	}
	return schedules, nil
}

// FindByID returns a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.Schedule, error) {
	const query = `SELECT id, class_id, subject_id, room, day_of_week, start_time, end_time, academic_year, semester, created_at, updated_at
		FROM schedules WHERE id = $1`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Create persists a new schedule and assigns the generated id.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (class_id, subject_id, room, day_of_week, start_time, end_time, academic_year, semester, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.GetContext(ctx, &schedule.ID, query,
		schedule.ClassID, schedule.SubjectID, schedule.Room, schedule.DayOfWeek,
		schedule.StartTime, schedule.EndTime, schedule.AcademicYear, schedule.Semester,
		schedule.CreatedAt, schedule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET class_id = :class_id, subject_id = :subject_id, room = :room,
		day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time,
		academic_year = :academic_year, semester = :semester, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule record.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
