package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, majorID *int64) ([]models.ClassDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
	CountUsers(ctx context.Context, id int64) (int, error)
	CountSchedules(ctx context.Context, id int64) (int, error)
}

type classMajorRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Major, error)
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Name         string `json:"name" validate:"required"`
	MajorID      int64  `json:"major_id" validate:"required,gt=0"`
	Year         int    `json:"year" validate:"required,gte=1,lte=8"`
	Semester     int    `json:"semester" validate:"required,oneof=1 2"`
	AcademicYear string `json:"academic_year" validate:"required"`
	Group        string `json:"group" validate:"required,max=8"`
	IsActive     bool   `json:"is_active"`
}

// ClassService manages the class catalog.
type ClassService struct {
	repo      classRepository
	majors    classMajorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService creates a ClassService.
func NewClassService(repo classRepository, majors classMajorRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, majors: majors, validator: validate, logger: logger}
}

// List returns classes, optionally filtered by major.
func (s *ClassService) List(ctx context.Context, majorID *int64) ([]models.ClassDetail, error) {
	classes, err := s.repo.List(ctx, majorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create adds a class under an existing major.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	if _, err := s.majors.FindByID(ctx, req.MajorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "major does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}

	class := &models.Class{
		Name:         strings.TrimSpace(req.Name),
		MajorID:      req.MajorID,
		Year:         req.Year,
		Semester:     req.Semester,
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Group:        strings.TrimSpace(req.Group),
		IsActive:     req.IsActive,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update modifies a class.
func (s *ClassService) Update(ctx context.Context, id int64, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if class.MajorID != req.MajorID {
		if _, err := s.majors.FindByID(ctx, req.MajorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "major does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
		}
	}

	class.Name = strings.TrimSpace(req.Name)
	class.MajorID = req.MajorID
	class.Year = req.Year
	class.Semester = req.Semester
	class.AcademicYear = strings.TrimSpace(req.AcademicYear)
	class.Group = strings.TrimSpace(req.Group)
	class.IsActive = req.IsActive

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class. Classes that still have members or schedule
// slots cannot be deleted.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	users, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class members")
	}
	if users > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "class still has members")
	}

	schedules, err := s.repo.CountSchedules(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class schedules")
	}
	if schedules > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "class still has schedule slots")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}
