package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgescolar/secretaria-api/internal/models"
)

func TestGradeRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "score", "attendance", "outcome", "created_at", "updated_at"}).
		AddRow("g1", "enr1", 8.5, 92.0, "APROVADO", now, now)
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), "enr1", 8.5, 92.0, models.GradeOutcomeApproved, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	grade := &models.Grade{EnrollmentID: "enr1", Score: 8.5, Attendance: 92, Outcome: models.GradeOutcomeApproved}
	err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, "g1", grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// On conflict the RETURNING clause hands back the stored row, so the caller
// always receives the original id and created_at rather than the candidates
// generated for the insert attempt.
func TestGradeRepositoryUpsertConflictReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	createdAt := time.Now().Add(-48 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "score", "attendance", "outcome", "created_at", "updated_at"}).
		AddRow("g-original", "enr1", 7.5, 88.0, "APROVADO", createdAt, time.Now())
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), "enr1", 7.5, 88.0, models.GradeOutcomeApproved, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	grade := &models.Grade{EnrollmentID: "enr1", Score: 7.5, Attendance: 88, Outcome: models.GradeOutcomeApproved}
	err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, "g-original", grade.ID)
	assert.WithinDuration(t, createdAt, grade.CreatedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryFindByEnrollmentID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "score", "attendance", "outcome", "created_at", "updated_at"}).
		AddRow("g1", "enr1", 8.5, 92.0, "APROVADO", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, enrollment_id, score, attendance, outcome, created_at, updated_at FROM grades WHERE enrollment_id = \$1`).
		WithArgs("enr1").
		WillReturnRows(rows)

	grade, err := repo.FindByEnrollmentID(context.Background(), "enr1")
	require.NoError(t, err)
	assert.Equal(t, models.GradeOutcomeApproved, grade.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}
