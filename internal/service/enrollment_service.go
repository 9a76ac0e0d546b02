package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/repository"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Exists(ctx context.Context, studentID, sectionID string) (bool, error)
	CreateReservingSeat(ctx context.Context, enrollment *models.Enrollment) error
	DeleteCascadingGrade(ctx context.Context, id string) error
}

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
}

// CreateEnrollmentRequest holds payload for enrolling a student.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// EnrollmentService coordinates seat reservation across students and sections.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentReader
	sections  enrollmentSectionReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentReader, sections enrollmentSectionReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, sections: sections, cache: cache, validator: validate, logger: logger}
}

// List returns enrollments with joined context plus pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// Get returns one enrollment with student and section context.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load enrollment")
	}
	return detail, nil
}

// Create enrolls a student into a section. Checks run in a fixed order so the
// caller always receives the most specific failure: student eligibility, then
// duplicate pair, then seat capacity. The final insert re-checks capacity and
// uniqueness under a row lock, which is what actually prevents overbooking
// under concurrency.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load student")
	}
	if student.Status != models.StudentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrStudentNotEligible, "student is not active")
	}

	if _, err := s.sections.FindByID(ctx, req.SectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load class section")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to check existing enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "student already enrolled in section")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, SectionID: req.SectionID}
	if err := s.repo.CreateReservingSeat(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatLimitReached):
			return nil, appErrors.Clone(appErrors.ErrSectionFull, "class section is full")
		case errors.Is(err, repository.ErrEnrollmentExists):
			return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "student already enrolled in section")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to create enrollment")
		}
	}

	s.invalidate(ctx)

	detail, err := s.repo.FindDetailByID(ctx, enrollment.ID)
	if err != nil {
		s.logger.Warn("enrollment created but detail lookup failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		return &models.EnrollmentDetail{Enrollment: *enrollment}, nil
	}
	return detail, nil
}

// Delete removes an enrollment together with its grade record.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load enrollment")
	}
	if err := s.repo.DeleteCascadingGrade(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to delete enrollment")
	}
	s.invalidate(ctx)
	return nil
}

func (s *EnrollmentService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}
