package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type classSectionRepository interface {
	List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
	FindDetailByID(ctx context.Context, id string) (*models.ClassSectionDetail, error)
	HasEnrollments(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, section *models.ClassSection) error
	Update(ctx context.Context, section *models.ClassSection) error
	Delete(ctx context.Context, id string) error
}

// CreateClassSectionRequest holds payload for creating sections.
type CreateClassSectionRequest struct {
	Label    string `json:"label" validate:"required"`
	Course   string `json:"course" validate:"required"`
	Shift    string `json:"shift"`
	Term     string `json:"term" validate:"required"`
	MaxSeats int    `json:"max_seats" validate:"required,gt=0"`
}

// UpdateClassSectionRequest holds payload for updating sections.
type UpdateClassSectionRequest struct {
	Label    string `json:"label" validate:"required"`
	Course   string `json:"course" validate:"required"`
	Shift    string `json:"shift"`
	Term     string `json:"term" validate:"required"`
	MaxSeats int    `json:"max_seats" validate:"required,gt=0"`
}

// ClassSectionService handles class section use-cases.
type ClassSectionService struct {
	repo      classSectionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassSectionService constructs the class section service.
func NewClassSectionService(repo classSectionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassSectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassSectionService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns sections with derived occupancy plus pagination metadata.
func (s *ClassSectionService) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to list class sections")
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
	return sections, pagination, nil
}

// Get returns a section with its derived enrolled count.
func (s *ClassSectionService) Get(ctx context.Context, id string) (*models.ClassSectionDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load class section")
	}
	return detail, nil
}

// Create opens a new section.
func (s *ClassSectionService) Create(ctx context.Context, req CreateClassSectionRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class section payload")
	}
	section := &models.ClassSection{
		Label:    req.Label,
		Course:   req.Course,
		Shift:    req.Shift,
		Term:     req.Term,
		MaxSeats: req.MaxSeats,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to create class section")
	}
	s.invalidate(ctx)
	return section, nil
}

// Update modifies an existing section. Seat capacity can never drop below the
// number of students already enrolled.
func (s *ClassSectionService) Update(ctx context.Context, id string, req UpdateClassSectionRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class section payload")
	}
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load class section")
	}
	if req.MaxSeats < detail.EnrolledCount {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("max_seats %d is below current enrollment %d", req.MaxSeats, detail.EnrolledCount))
	}
	section := detail.ClassSection
	section.Label = req.Label
	section.Course = req.Course
	section.Shift = req.Shift
	section.Term = req.Term
	section.MaxSeats = req.MaxSeats
	if err := s.repo.Update(ctx, &section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to update class section")
	}
	s.invalidate(ctx)
	return &section, nil
}

// Delete removes a section with no enrollments.
func (s *ClassSectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load class section")
	}
	hasEnrollments, err := s.repo.HasEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to check section enrollments")
	}
	if hasEnrollments {
		return appErrors.Clone(appErrors.ErrConflict, "class section has enrollments")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to delete class section")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ClassSectionService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}
