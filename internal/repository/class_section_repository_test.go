package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgescolar/secretaria-api/internal/models"
)

func TestClassSectionRepositoryListDerivesOccupancy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "label", "course", "shift", "term", "max_seats", "created_at", "updated_at", "enrolled_count"}).
		AddRow("sec1", "3A", "Ensino Medio", "MANHA", "2026-1", 30, now, now, 28).
		AddRow("sec2", "3B", "Ensino Medio", "TARDE", "2026-1", 30, now, now, 0)
	mock.ExpectQuery(`SELECT cs\.id, .+ COUNT\(e\.id\) AS enrolled_count.+FROM class_sections cs LEFT JOIN enrollments e`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT cs\.id\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	sections, total, err := repo.List(context.Background(), models.ClassSectionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, sections, 2)
	assert.Equal(t, 28, sections[0].EnrolledCount)
	assert.Equal(t, 0, sections[1].EnrolledCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSectionRepositoryHasEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSectionRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM enrollments WHERE section_id = \$1`).
		WithArgs("sec1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM enrollments WHERE section_id = \$1`).
		WithArgs("sec2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	occupied, err := repo.HasEnrollments(context.Background(), "sec1")
	require.NoError(t, err)
	assert.True(t, occupied)

	empty, err := repo.HasEnrollments(context.Background(), "sec2")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassSectionRepository(db)

	mock.ExpectExec(`INSERT INTO class_sections`).
		WithArgs(sqlmock.AnyArg(), "3A", "Ensino Medio", "MANHA", "2026-1", 30, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	section := &models.ClassSection{Label: "3A", Course: "Ensino Medio", Shift: "MANHA", Term: "2026-1", MaxSeats: 30}
	err := repo.Create(context.Background(), section)
	require.NoError(t, err)
	assert.NotEmpty(t, section.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
