package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/pkg/export"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type serviceRequestRepository interface {
	List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequestDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	FindDetailByID(ctx context.Context, id string) (*models.ServiceRequestDetail, error)
	Create(ctx context.Context, request *models.ServiceRequest) error
	Update(ctx context.Context, request *models.ServiceRequest) error
	Delete(ctx context.Context, id string) error
}

type serviceRequestStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type documentRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
}

// CreateServiceRequestRequest holds payload for opening a service request.
type CreateServiceRequestRequest struct {
	StudentID   string                    `json:"student_id" validate:"required"`
	Type        models.ServiceRequestType `json:"type" validate:"required,oneof=DECLARACAO HISTORICO SEGUNDA_VIA OUTROS"`
	RequestedAt time.Time                 `json:"requested_at"`
	Notes       string                    `json:"notes"`
}

// UpdateServiceRequestRequest holds payload for updating a service request.
// Status may move in any direction, including reopening a concluded request.
type UpdateServiceRequestRequest struct {
	Type        models.ServiceRequestType   `json:"type" validate:"required,oneof=DECLARACAO HISTORICO SEGUNDA_VIA OUTROS"`
	Status      models.ServiceRequestStatus `json:"status" validate:"required,oneof=ABERTO EM_ANDAMENTO CONCLUIDO"`
	RequestedAt time.Time                   `json:"requested_at"`
	Notes       string                      `json:"notes"`
}

// ServiceRequestService handles secretariat request use-cases.
type ServiceRequestService struct {
	repo      serviceRequestRepository
	students  serviceRequestStudentReader
	pdf       documentRenderer
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewServiceRequestService constructs the service request service.
func NewServiceRequestService(repo serviceRequestRepository, students serviceRequestStudentReader, pdf documentRenderer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ServiceRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceRequestService{repo: repo, students: students, pdf: pdf, cache: cache, validator: validate, logger: logger}
}

// List returns service requests with pagination metadata.
func (s *ServiceRequestService) List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequestDetail, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to list service requests")
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
	return requests, pagination, nil
}

// Get returns one service request with the student name.
func (s *ServiceRequestService) Get(ctx context.Context, id string) (*models.ServiceRequestDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load service request")
	}
	return detail, nil
}

// Create opens a service request for an existing student. New requests always
// start in ABERTO.
func (s *ServiceRequestService) Create(ctx context.Context, req CreateServiceRequestRequest) (*models.ServiceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service request payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load student")
	}
	requestedAt := req.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = time.Now().UTC()
	}
	request := &models.ServiceRequest{
		StudentID:   req.StudentID,
		Type:        req.Type,
		RequestedAt: requestedAt,
		Status:      models.ServiceRequestOpen,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to create service request")
	}
	s.invalidate(ctx)
	return request, nil
}

// Update modifies a service request.
func (s *ServiceRequestService) Update(ctx context.Context, id string, req UpdateServiceRequestRequest) (*models.ServiceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service request payload")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load service request")
	}
	request.Type = req.Type
	request.Status = req.Status
	if !req.RequestedAt.IsZero() {
		request.RequestedAt = req.RequestedAt
	}
	request.Notes = req.Notes
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to update service request")
	}
	s.invalidate(ctx)
	return request, nil
}

// Delete removes a service request.
func (s *ServiceRequestService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load service request")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to delete service request")
	}
	s.invalidate(ctx)
	return nil
}

// Declaration renders an enrollment declaration PDF for a DECLARACAO request.
func (s *ServiceRequestService) Declaration(ctx context.Context, id string) ([]byte, string, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load service request")
	}
	if detail.Type != models.ServiceRequestDeclaration {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "service request is not a declaration")
	}
	student, err := s.students.FindByID(ctx, detail.StudentID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to load student")
	}

	now := time.Now().UTC()
	doc := export.Document{
		Title: "Declaracao de Matricula",
		Paragraphs: []string{
			fmt.Sprintf("Declaramos, para os devidos fins, que %s, portador(a) do CPF %s, encontra-se com situacao %s nesta instituicao de ensino.",
				student.Name, student.CPF, student.Status),
			fmt.Sprintf("Solicitacao registrada em %s sob o protocolo %s.",
				detail.RequestedAt.Format("02/01/2006"), detail.ID),
		},
		Footer: fmt.Sprintf("Emitido em %s", now.Format("02/01/2006 15:04")),
	}
	payload, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render declaration")
	}
	filename := fmt.Sprintf("declaracao-%s-%s.pdf", detail.ID, now.Format("20060102"))
	return payload, filename, nil
}

func (s *ServiceRequestService) invalidate(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}
