package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/repository"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByCPF(ctx context.Context, cpf string, excludeID string) (bool, error)
	HasDependents(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	Name      string               `json:"name" validate:"required"`
	CPF       string               `json:"cpf" validate:"required"`
	BirthDate time.Time            `json:"birth_date" validate:"required"`
	Phone     string               `json:"phone"`
	Email     string               `json:"email" validate:"omitempty,email"`
	Address   string               `json:"address"`
	Status    models.StudentStatus `json:"status" validate:"omitempty,oneof=ATIVO INATIVO TRANCADO"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	Name      string               `json:"name" validate:"required"`
	CPF       string               `json:"cpf" validate:"required"`
	BirthDate time.Time            `json:"birth_date" validate:"required"`
	Phone     string               `json:"phone"`
	Email     string               `json:"email" validate:"omitempty,email"`
	Address   string               `json:"address"`
	Status    models.StudentStatus `json:"status" validate:"required,oneof=ATIVO INATIVO TRANCADO"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The CPF must be unique across the table.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByCPF(ctx, req.CPF, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to validate cpf")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCPF, "cpf already registered")
	}
	status := req.Status
	if status == "" {
		status = models.StudentStatusActive
	}
	student := &models.Student{
		Name:      req.Name,
		CPF:       req.CPF,
		BirthDate: req.BirthDate,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Status:    status,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrCPFExists) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCPF, "cpf already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to create student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load student")
	}
	exists, err := s.repo.ExistsByCPF(ctx, req.CPF, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to validate cpf")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCPF, "cpf already registered")
	}
	student.Name = req.Name
	student.CPF = req.CPF
	student.BirthDate = req.BirthDate
	student.Phone = req.Phone
	student.Email = req.Email
	student.Address = req.Address
	student.Status = req.Status
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrCPFExists) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCPF, "cpf already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to update student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Delete removes a student that has no enrollments or service requests.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load student")
	}
	hasDeps, err := s.repo.HasDependents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to check student references")
	}
	if hasDeps {
		return appErrors.Clone(appErrors.ErrConflict, "student has enrollments or service requests")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to delete student")
	}
	s.invalidate(ctx)
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}
