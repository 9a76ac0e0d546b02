package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/service"
)

type fakeGradeRepo struct {
	grades map[string]models.Grade
}

func (f *fakeGradeRepo) List(ctx context.Context, enrollmentID string) ([]models.GradeDetail, error) {
	out := make([]models.GradeDetail, 0, len(f.grades))
	for _, g := range f.grades {
		if enrollmentID != "" && g.EnrollmentID != enrollmentID {
			continue
		}
		out = append(out, models.GradeDetail{Grade: g})
	}
	return out, nil
}

func (f *fakeGradeRepo) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	if g, ok := f.grades[enrollmentID]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGradeRepo) Upsert(ctx context.Context, grade *models.Grade) error {
	if f.grades == nil {
		f.grades = make(map[string]models.Grade)
	}
	if grade.ID == "" {
		grade.ID = "g1"
	}
	f.grades[grade.EnrollmentID] = *grade
	return nil
}

type fakeEnrollmentReader struct {
	enrollments map[string]models.Enrollment
}

func (f *fakeEnrollmentReader) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := f.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func newGradeHandlerFixture() (*GradeHandler, *fakeGradeRepo) {
	repo := &fakeGradeRepo{grades: make(map[string]models.Grade)}
	enrollments := &fakeEnrollmentReader{enrollments: map[string]models.Enrollment{
		"enr1": {ID: "enr1", StudentID: "stu1", SectionID: "sec1"},
	}}
	svc := service.NewGradeService(repo, enrollments, nil, nil)
	return NewGradeHandler(svc), repo
}

func TestGradeHandlerUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newGradeHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"enrollment_id":"enr1","score":8.5,"attendance":92,"outcome":"APROVADO"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/notas", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Upsert(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	stored, ok := repo.grades["enr1"]
	assert.True(t, ok)
	assert.Equal(t, 8.5, stored.Score)
}

func TestGradeHandlerUpsertMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newGradeHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notas", strings.NewReader(`{"score":`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Upsert(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradeHandlerUpsertUnknownEnrollment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newGradeHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"enrollment_id":"ghost","score":5,"attendance":80,"outcome":"EM_CURSO"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/notas", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Upsert(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGradeHandlerGetByEnrollmentNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newGradeHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notas/matricula/ghost", nil)
	c.Params = gin.Params{{Key: "enrollmentId", Value: "ghost"}}

	handler.GetByEnrollment(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
