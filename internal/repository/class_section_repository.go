package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sgescolar/secretaria-api/internal/models"
)

// ClassSectionRepository manages persistence for class sections (turmas).
type ClassSectionRepository struct {
	db *sqlx.DB
}

// NewClassSectionRepository constructs the repository.
func NewClassSectionRepository(db *sqlx.DB) *ClassSectionRepository {
	return &ClassSectionRepository{db: db}
}

// List returns sections with their derived enrolled count.
func (r *ClassSectionRepository) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, int, error) {
	base := "FROM class_sections cs LEFT JOIN enrollments e ON e.section_id = cs.id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("cs.term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(cs.label) LIKE $%d OR LOWER(cs.course) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"label":      "cs.label",
		"course":     "cs.course",
		"created_at": "cs.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "cs.label"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT cs.id, cs.label, cs.course, cs.shift, cs.term, cs.max_seats, cs.created_at, cs.updated_at,
        COUNT(e.id) AS enrolled_count
        %s GROUP BY cs.id ORDER BY %s %s LIMIT %d OFFSET %d`, clause, column, order, size, offset)

	var sections []models.ClassSectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT cs.id) %s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class sections: %w", err)
	}
	return sections, total, nil
}

// FindByID fetches a section by ID.
func (r *ClassSectionRepository) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	const query = `SELECT id, label, course, shift, term, max_seats, created_at, updated_at FROM class_sections WHERE id = $1`
	var section models.ClassSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindDetailByID fetches a section with its derived occupancy.
func (r *ClassSectionRepository) FindDetailByID(ctx context.Context, id string) (*models.ClassSectionDetail, error) {
	const query = `SELECT cs.id, cs.label, cs.course, cs.shift, cs.term, cs.max_seats, cs.created_at, cs.updated_at,
        COUNT(e.id) AS enrolled_count
        FROM class_sections cs LEFT JOIN enrollments e ON e.section_id = cs.id
        WHERE cs.id = $1 GROUP BY cs.id`
	var detail models.ClassSectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// HasEnrollments reports whether any enrollment references the section.
func (r *ClassSectionRepository) HasEnrollments(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE section_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section enrollments: %w", err)
	}
	return true, nil
}

// Create inserts a new section.
func (r *ClassSectionRepository) Create(ctx context.Context, section *models.ClassSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now
	const query = `INSERT INTO class_sections (id, label, course, shift, term, max_seats, created_at, updated_at)
        VALUES (:id, :label, :course, :shift, :term, :max_seats, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create class section: %w", err)
	}
	return nil
}

// Update modifies an existing section.
func (r *ClassSectionRepository) Update(ctx context.Context, section *models.ClassSection) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_sections SET label = :label, course = :course, shift = :shift, term = :term,
        max_seats = :max_seats, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update class section: %w", err)
	}
	return nil
}

// Delete removes a section row.
func (r *ClassSectionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM class_sections WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class section: %w", err)
	}
	return nil
}

// Count returns the total number of sections.
func (r *ClassSectionRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM class_sections`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count class sections: %w", err)
	}
	return total, nil
}
