package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sgescolar/secretaria-api/internal/models"
)

// Sentinel errors distinguishing the enrollment reservation outcomes. The
// service layer maps them onto the API error taxonomy.
var (
	ErrSeatLimitReached = errors.New("section seat limit reached")
	ErrEnrollmentExists = errors.New("enrollment already exists")
)

const pqUniqueViolation = "23505"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments joined with student and section context.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
INNER JOIN students s ON s.id = e.student_id
INNER JOIN class_sections cs ON cs.id = e.section_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("e.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_name": "s.name",
		"section":      "cs.label",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_at"
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

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.section_id, e.enrolled_at,
        s.name AS student_name, s.cpf AS student_cpf, s.status AS student_status,
        cs.label AS section_label, cs.course AS section_course
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, section_id, enrolled_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with contextual info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.section_id, e.enrolled_at,
        s.name AS student_name, s.cpf AS student_cpf, s.status AS student_status,
        cs.label AS section_label, cs.course AS section_course
        FROM enrollments e
        INNER JOIN students s ON s.id = e.student_id
        INNER JOIN class_sections cs ON cs.id = e.section_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Exists checks whether the (student, section) pair is already enrolled.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, sectionID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND section_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// CreateReservingSeat inserts the enrollment inside one transaction that
// serializes on the section row. The seat count and the insert commit
// together, so two concurrent requests for the last seat cannot both pass the
// capacity check. The unique (student_id, section_id) index backstops the
// duplicate check regardless of caller discipline.
func (r *EnrollmentRepository) CreateReservingSeat(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var maxSeats int
	if err = tx.GetContext(ctx, &maxSeats, `SELECT max_seats FROM class_sections WHERE id = $1 FOR UPDATE`, enrollment.SectionID); err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock section: %w", err)
	}

	var occupied int
	if err = tx.GetContext(ctx, &occupied, `SELECT COUNT(*) FROM enrollments WHERE section_id = $1`, enrollment.SectionID); err != nil {
		return fmt.Errorf("count section enrollments: %w", err)
	}
	if occupied >= maxSeats {
		err = ErrSeatLimitReached
		return err
	}

	const insert = `INSERT INTO enrollments (id, student_id, section_id, enrolled_at) VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, insert, enrollment.ID, enrollment.StudentID, enrollment.SectionID, enrollment.EnrolledAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			err = ErrEnrollmentExists
		} else {
			err = fmt.Errorf("create enrollment: %w", err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// DeleteCascadingGrade removes the enrollment and its dependent grade row in
// one transaction.
func (r *EnrollmentRepository) DeleteCascadingGrade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM grades WHERE enrollment_id = $1`, id); err != nil {
		err = fmt.Errorf("delete dependent grade: %w", err)
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		err = fmt.Errorf("delete enrollment: %w", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Count returns the total number of enrollments.
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return total, nil
}
