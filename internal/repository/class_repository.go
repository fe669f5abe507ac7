package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/attendance-api/internal/models"
)

const classColumns = `c.id, c.name, c.major_id, c.year, c.semester, c.academic_year, c.class_group, c.is_active, c.created_at, c.updated_at`

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new repository instance.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes with their major name, optionally scoped to one major.
func (r *ClassRepository) List(ctx context.Context, majorID *int64) ([]models.ClassDetail, error) {
	query := fmt.Sprintf(`SELECT %s, m.name AS major_name FROM classes c JOIN majors m ON m.id = c.major_id`, classColumns)
	var args []interface{}
	if majorID != nil {
		query += ` WHERE c.major_id = $1`
		args = append(args, *majorID)
	}
	query += ` ORDER BY c.name ASC`

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, name, major_id, year, semester, academic_year, class_group, is_active, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create persists a new class and assigns the generated id.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	const query = `INSERT INTO classes (name, major_id, year, semester, academic_year, class_group, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.GetContext(ctx, &class.ID, query,
		class.Name, class.MajorID, class.Year, class.Semester, class.AcademicYear,
		class.Group, class.IsActive, class.CreatedAt, class.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, major_id = :major_id, year = :year, semester = :semester,
		academic_year = :academic_year, class_group = :class_group, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class record.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// CountUsers returns the number of users assigned to the class.
func (r *ClassRepository) CountUsers(ctx context.Context, id int64) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count class users: %w", err)
	}
	return count, nil
}

// CountSchedules returns the number of schedules referencing the class.
func (r *ClassRepository) CountSchedules(ctx context.Context, id int64) (int, error) {
	const query = `SELECT COUNT(*) FROM schedules WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count class schedules: %w", err)
	}
	return count, nil
}

// Count returns the total number of classes.
func (r *ClassRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes`); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return count, nil
}
