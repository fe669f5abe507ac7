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

type majorRepository interface {
	List(ctx context.Context) ([]models.MajorDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Major, error)
	Create(ctx context.Context, major *models.Major) error
	Update(ctx context.Context, major *models.Major) error
	Delete(ctx context.Context, id int64) error
	CountClasses(ctx context.Context, id int64) (int, error)
}

type majorDepartmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Department, error)
}

// MajorRequest is the payload for creating or updating a major.
type MajorRequest struct {
	Name         string `json:"name" validate:"required"`
	ShortName    string `json:"short_name" validate:"required,max=16"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// MajorService manages the major catalog.
type MajorService struct {
	repo        majorRepository
	departments majorDepartmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMajorService creates a MajorService.
func NewMajorService(repo majorRepository, departments majorDepartmentRepository, validate *validator.Validate, logger *zap.Logger) *MajorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MajorService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns all majors with their department labels.
func (s *MajorService) List(ctx context.Context) ([]models.MajorDetail, error) {
	majors, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list majors")
	}
	return majors, nil
}

// Get returns a major by id.
func (s *MajorService) Get(ctx context.Context, id int64) (*models.Major, error) {
	major, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "major not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}
	return major, nil
}

// Create adds a major under an existing department.
func (s *MajorService) Create(ctx context.Context, req MajorRequest) (*models.Major, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid major payload")
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	major := &models.Major{
		Name:         strings.TrimSpace(req.Name),
		ShortName:    strings.TrimSpace(req.ShortName),
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.Create(ctx, major); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create major")
	}
	return major, nil
}

// Update modifies a major.
func (s *MajorService) Update(ctx context.Context, id int64, req MajorRequest) (*models.Major, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid major payload")
	}

	major, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if major.DepartmentID != req.DepartmentID {
		if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "department does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
	}

	major.Name = strings.TrimSpace(req.Name)
	major.ShortName = strings.TrimSpace(req.ShortName)
	major.DepartmentID = req.DepartmentID
	if err := s.repo.Update(ctx, major); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update major")
	}
	return major, nil
}

// Delete removes a major. Majors that still own classes cannot be
// deleted.
func (s *MajorService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	classes, err := s.repo.CountClasses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	if classes > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "major still has classes")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete major")
	}
	return nil
}
