package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgescolar/secretaria-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "cpf", "birth_date", "phone", "email", "address", "status", "created_at", "updated_at"}).
		AddRow("1", "Maria Silva", "11111111111", time.Now(), "", "", "", "ATIVO", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, name, cpf, birth_date, phone, email, address, status, created_at, updated_at`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`status = \$1`).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cpf", "birth_date", "phone", "email", "address", "status", "created_at", "updated_at"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.StudentFilter{Status: models.StudentStatusActive})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{Name: "Maria Silva", CPF: "11111111111", BirthDate: time.Now(), Status: models.StudentStatusActive}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent insert can slip past the ExistsByCPF precheck; the unique
// index then rejects the insert and the violation maps to the sentinel.
func TestStudentRepositoryCreateDuplicateCPF(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "students_cpf_key"})

	student := &models.Student{Name: "Maria Silva", CPF: "11111111111", BirthDate: time.Now(), Status: models.StudentStatusActive}
	err := repo.Create(context.Background(), student)
	require.ErrorIs(t, err, ErrCPFExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateDuplicateCPF(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "students_cpf_key"})

	student := &models.Student{ID: "stu1", Name: "Maria Silva", CPF: "11111111111", BirthDate: time.Now(), Status: models.StudentStatusActive}
	err := repo.Update(context.Background(), student)
	require.ErrorIs(t, err, ErrCPFExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByCPF(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE cpf = \$1`).
		WithArgs("11111111111").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCPF(context.Background(), "11111111111", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByCPFExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE cpf = \$1 AND id <> \$2`).
		WithArgs("11111111111", "self-id").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByCPF(context.Background(), "11111111111", "self-id")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryHasDependents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`EXISTS`).
		WithArgs("id1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	has, err := repo.HasDependents(context.Background(), "id1")
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}
