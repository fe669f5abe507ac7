package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/attendance-api/internal/models"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context) ([]models.ScheduleDetail, error)
	ListByClass(ctx context.Context, classID int64) ([]models.ScheduleDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id int64) error
}

type scheduleClassRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

type scheduleSubjectRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

// ScheduleRequest is the payload for creating or updating a schedule slot.
type ScheduleRequest struct {
	ClassID      int64   `json:"class_id" validate:"required,gt=0"`
	SubjectID    int64   `json:"subject_id" validate:"required,gt=0"`
	Room         *string `json:"room"`
	DayOfWeek    string  `json:"day_of_week" validate:"required"`
	StartTime    string  `json:"start_time" validate:"required"`
	EndTime      string  `json:"end_time" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Semester     int     `json:"semester" validate:"required,oneof=1 2"`
}

// ScheduleService manages recurring class session slots.
type ScheduleService struct {
	repo      scheduleRepository
	classes   scheduleClassRepository
	subjects  scheduleSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(repo scheduleRepository, classes scheduleClassRepository, subjects scheduleSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{repo: repo, classes: classes, subjects: subjects, validator: validate, logger: logger}
}

// List returns all schedule slots with class and subject labels.
func (s *ScheduleService) List(ctx context.Context, classID *int64) ([]models.ScheduleDetail, error) {
	var (
		slots []models.ScheduleDetail
		err   error
	)
	if classID != nil {
		slots, err = s.repo.ListByClass(ctx, *classID)
	} else {
		slots, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return slots, nil
}

// Get returns a schedule slot by id.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Create adds a schedule slot. The end time must come after the start
// time within the same day.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.Schedule, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	schedule := &models.Schedule{
		ClassID:      req.ClassID,
		SubjectID:    req.SubjectID,
		Room:         req.Room,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Semester:     req.Semester,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return schedule, nil
}

// Update modifies a schedule slot.
func (s *ScheduleService) Update(ctx context.Context, id int64, req ScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	schedule.ClassID = req.ClassID
	schedule.SubjectID = req.SubjectID
	schedule.Room = req.Room
	schedule.DayOfWeek = req.DayOfWeek
	schedule.StartTime = req.StartTime
	schedule.EndTime = req.EndTime
	schedule.AcademicYear = strings.TrimSpace(req.AcademicYear)
	schedule.Semester = req.Semester

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return schedule, nil
}

// Delete removes a schedule slot.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

func (s *ScheduleService) validateRequest(ctx context.Context, req ScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	if !models.ValidWeekday(req.DayOfWeek) {
		return appErrors.Clone(appErrors.ErrValidation, "day_of_week must be a weekday name")
	}

	start, err := parseClock(req.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
