package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/attendance-api/internal/models"
)

// MajorRepository handles persistence for majors.
type MajorRepository struct {
	db *sqlx.DB
}

// NewMajorRepository creates a new repository instance.
func NewMajorRepository(db *sqlx.DB) *MajorRepository {
	return &MajorRepository{db: db}
}

// List returns all majors with the owning department's short name.
func (r *MajorRepository) List(ctx context.Context) ([]models.MajorDetail, error) {
	const query = `SELECT m.id, m.name, m.short_name, m.department_id, m.created_at, m.updated_at,
		d.short_name AS department_short_name
		FROM majors m
		JOIN departments d ON d.id = m.department_id
		ORDER BY m.name ASC`
	var majors []models.MajorDetail
	if err := r.db.SelectContext(ctx, &majors, query); err != nil {
		return nil, fmt.Errorf("list majors: %w", err)
	}
	return majors, nil
}

// FindByID returns a major by id.
func (r *MajorRepository) FindByID(ctx context.Context, id int64) (*models.Major, error) {
	const query = `SELECT id, name, short_name, department_id, created_at, updated_at FROM majors WHERE id = $1`
	var major models.Major
	if err := r.db.GetContext(ctx, &major, query, id); err != nil {
		return nil, err
	}
	return &major, nil
}

// Create persists a new major and assigns the generated id.
func (r *MajorRepository) Create(ctx context.Context, major *models.Major) error {
	now := time.Now().UTC()
	major.CreatedAt = now
	major.UpdatedAt = now

	const query = `INSERT INTO majors (name, short_name, department_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &major.ID, query, major.Name, major.ShortName, major.DepartmentID, major.CreatedAt, major.UpdatedAt); err != nil {
		return fmt.Errorf("create major: %w", err)
	}
	return nil
}

// Update modifies a major.
func (r *MajorRepository) Update(ctx context.Context, major *models.Major) error {
	major.UpdatedAt = time.Now().UTC()
	const query = `UPDATE majors SET name = :name, short_name = :short_name, department_id = :department_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, major); err != nil {
		return fmt.Errorf("update major: %w", err)
	}
	return nil
}

// Delete removes a major record.
func (r *MajorRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM majors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete major: %w", err)
	}
	return nil
}

// CountClasses returns the number of classes referencing the major.
func (r *MajorRepository) CountClasses(ctx context.Context, id int64) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE major_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count major classes: %w", err)
	}
	return count, nil
}

// Count returns the total number of majors.
func (r *MajorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM majors`); err != nil {
		return 0, fmt.Errorf("count majors: %w", err)
	}
	return count, nil
}
