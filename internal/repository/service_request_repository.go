package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sgescolar/secretaria-api/internal/models"
)

// ServiceRequestRepository persists secretariat service requests.
type ServiceRequestRepository struct {
	db *sqlx.DB
}

// NewServiceRequestRepository constructs the repository.
func NewServiceRequestRepository(db *sqlx.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

// List returns service requests joined with the student name, newest first.
func (r *ServiceRequestRepository) List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequestDetail, int, error) {
	base := `FROM service_requests sr INNER JOIN students s ON s.id = sr.student_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("sr.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("sr.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("sr.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT sr.id, sr.student_id, sr.type, sr.requested_at, sr.status, sr.notes, sr.created_at, sr.updated_at,
        s.name AS student_name
        %s ORDER BY sr.requested_at %s LIMIT %d OFFSET %d`, base+clause, order, size, offset)

	var requests []models.ServiceRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list service requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count service requests: %w", err)
	}
	return requests, total, nil
}

// FindByID fetches a service request by ID.
func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	const query = `SELECT id, student_id, type, requested_at, status, notes, created_at, updated_at FROM service_requests WHERE id = $1`
	var request models.ServiceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindDetailByID fetches a service request with the student name.
func (r *ServiceRequestRepository) FindDetailByID(ctx context.Context, id string) (*models.ServiceRequestDetail, error) {
	const query = `SELECT sr.id, sr.student_id, sr.type, sr.requested_at, sr.status, sr.notes, sr.created_at, sr.updated_at,
        s.name AS student_name
        FROM service_requests sr INNER JOIN students s ON s.id = sr.student_id
        WHERE sr.id = $1`
	var detail models.ServiceRequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new service request.
func (r *ServiceRequestRepository) Create(ctx context.Context, request *models.ServiceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO service_requests (id, student_id, type, requested_at, status, notes, created_at, updated_at)
        VALUES (:id, :student_id, :type, :requested_at, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create service request: %w", err)
	}
	return nil
}

// Update modifies an existing service request.
func (r *ServiceRequestRepository) Update(ctx context.Context, request *models.ServiceRequest) error {
	request.UpdatedAt = time.Now().UTC()
	const query = `UPDATE service_requests SET student_id = :student_id, type = :type, requested_at = :requested_at,
        status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("update service request: %w", err)
	}
	return nil
}

// Delete removes a service request row.
func (r *ServiceRequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM service_requests WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete service request: %w", err)
	}
	return nil
}

// CountByStatus returns the number of requests with the given status.
func (r *ServiceRequestRepository) CountByStatus(ctx context.Context, status models.ServiceRequestStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM service_requests WHERE status = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, status); err != nil {
		return 0, fmt.Errorf("count service requests: %w", err)
	}
	return total, nil
}
