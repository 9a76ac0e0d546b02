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

// GradeRepository handles persistence of academic records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grades joined with their enrollment context, ordered by
// student name as the history screen expects.
func (r *GradeRepository) List(ctx context.Context, enrollmentID string) ([]models.GradeDetail, error) {
	base := `SELECT g.id, g.enrollment_id, g.score, g.attendance, g.outcome, g.created_at, g.updated_at,
        s.name AS student_name, s.cpf AS student_cpf,
        cs.label AS section_label, cs.course AS section_course
        FROM grades g
        INNER JOIN enrollments e ON e.id = g.enrollment_id
        INNER JOIN students s ON s.id = e.student_id
        INNER JOIN class_sections cs ON cs.id = e.section_id`
	var conditions []string
	var args []interface{}
	if enrollmentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.enrollment_id = $%d", len(args)+1))
		args = append(args, enrollmentID)
	}
	query := base
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.name ASC"

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByEnrollmentID returns the grade keyed to an enrollment.
func (r *GradeRepository) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	const query = `SELECT id, enrollment_id, score, attendance, outcome, created_at, updated_at FROM grades WHERE enrollment_id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, enrollmentID); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Upsert creates or fully replaces the grade for an enrollment in a single
// statement. Repeating the same payload leaves state unchanged, and the
// unique enrollment_id index guarantees at most one row per enrollment even
// under concurrent submissions. The grade is overwritten with the persisted
// row, so on conflict the caller sees the original id and created_at.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	const query = `INSERT INTO grades (id, enrollment_id, score, attendance, outcome, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (enrollment_id) DO UPDATE
        SET score = EXCLUDED.score, attendance = EXCLUDED.attendance, outcome = EXCLUDED.outcome, updated_at = EXCLUDED.updated_at
        RETURNING id, enrollment_id, score, attendance, outcome, created_at, updated_at`
	if err := r.db.GetContext(ctx, grade, query,
		grade.ID, grade.EnrollmentID, grade.Score, grade.Attendance, grade.Outcome, grade.CreatedAt, grade.UpdatedAt); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}
