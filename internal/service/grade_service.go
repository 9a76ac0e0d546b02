package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, enrollmentID string) ([]models.GradeDetail, error)
	FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
}

type gradeEnrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// UpsertGradeRequest holds payload for recording a grade. Submitting for an
// enrollment that already holds one replaces the record in place.
type UpsertGradeRequest struct {
	EnrollmentID string              `json:"enrollment_id" validate:"required"`
	Score        float64             `json:"score" validate:"gte=0,lte=10"`
	Attendance   float64             `json:"attendance" validate:"gte=0,lte=100"`
	Outcome      models.GradeOutcome `json:"outcome" validate:"required,oneof=APROVADO REPROVADO EM_CURSO"`
}

// GradeService handles academic record use-cases.
type GradeService struct {
	repo        gradeRepository
	enrollments gradeEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, enrollments gradeEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns grades with enrollment context, optionally scoped to one
// enrollment.
func (s *GradeService) List(ctx context.Context, enrollmentID string) ([]models.GradeDetail, error) {
	grades, err := s.repo.List(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to list grades")
	}
	return grades, nil
}

// GetByEnrollment returns the grade recorded for an enrollment.
func (s *GradeService) GetByEnrollment(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	grade, err := s.repo.FindByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load grade")
	}
	return grade, nil
}

// Upsert records or replaces the grade for an enrollment.
func (s *GradeService) Upsert(ctx context.Context, req UpsertGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load enrollment")
	}

	grade := &models.Grade{
		EnrollmentID: req.EnrollmentID,
		Score:        req.Score,
		Attendance:   req.Attendance,
		Outcome:      req.Outcome,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to save grade")
	}
	return grade, nil
}
