package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/repository"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[string]models.Enrollment
	pairs       map[string]bool
	maxSeats    int
	occupied    int
	deleted     []string
}

func pairKey(studentID, sectionID string) string {
	return studentID + "|" + sectionID
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EnrollmentDetail, 0, len(m.enrollments))
	for _, e := range m.enrollments {
		out = append(out, models.EnrollmentDetail{Enrollment: e})
	}
	return out, len(out), nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, sectionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pairs[pairKey(studentID, sectionID)], nil
}

func (m *mockEnrollmentRepo) CreateReservingSeat(ctx context.Context, enrollment *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pairs[pairKey(enrollment.StudentID, enrollment.SectionID)] {
		return repository.ErrEnrollmentExists
	}
	if m.occupied >= m.maxSeats {
		return repository.ErrSeatLimitReached
	}
	if enrollment.ID == "" {
		enrollment.ID = pairKey(enrollment.StudentID, enrollment.SectionID)
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if m.pairs == nil {
		m.pairs = make(map[string]bool)
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.pairs[pairKey(enrollment.StudentID, enrollment.SectionID)] = true
	m.occupied++
	return nil
}

func (m *mockEnrollmentRepo) DeleteCascadingGrade(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.enrollments, id)
	return nil
}

type mockStudentReader struct {
	students map[string]models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockSectionReader struct {
	sections map[string]models.ClassSection
}

func (m *mockSectionReader) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	if s, ok := m.sections[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func newEnrollmentFixture(maxSeats int) (*EnrollmentService, *mockEnrollmentRepo) {
	repo := &mockEnrollmentRepo{maxSeats: maxSeats, pairs: make(map[string]bool), enrollments: make(map[string]models.Enrollment)}
	students := &mockStudentReader{students: map[string]models.Student{
		"active":   {ID: "active", Name: "Maria", Status: models.StudentStatusActive},
		"inactive": {ID: "inactive", Name: "Jose", Status: models.StudentStatusInactive},
		"locked":   {ID: "locked", Name: "Ana", Status: models.StudentStatusSuspended},
	}}
	sections := &mockSectionReader{sections: map[string]models.ClassSection{
		"sec1": {ID: "sec1", Label: "A1", Course: "Informatica", MaxSeats: maxSeats},
	}}
	svc := NewEnrollmentService(repo, students, sections, nil, validator.New(), zap.NewNop())
	return svc, repo
}

func TestEnrollmentServiceCreate(t *testing.T) {
	svc, repo := newEnrollmentFixture(30)

	detail, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "active", SectionID: "sec1"})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.ID)
	assert.Equal(t, 1, repo.occupied)
}

func TestEnrollmentServiceCreateInactiveStudent(t *testing.T) {
	svc, _ := newEnrollmentFixture(30)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "inactive", SectionID: "sec1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStudentNotEligible.Code, appErr.Code)
}

func TestEnrollmentServiceCreateSuspendedStudent(t *testing.T) {
	svc, _ := newEnrollmentFixture(30)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "locked", SectionID: "sec1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStudentNotEligible.Code, appErr.Code)
}

// Eligibility is reported before the duplicate pair, even when both apply.
func TestEnrollmentServiceCreateEligibilityBeforeDuplicate(t *testing.T) {
	svc, repo := newEnrollmentFixture(30)
	repo.pairs[pairKey("inactive", "sec1")] = true

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "inactive", SectionID: "sec1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStudentNotEligible.Code, appErr.Code)
}

func TestEnrollmentServiceCreateDuplicate(t *testing.T) {
	svc, repo := newEnrollmentFixture(30)
	repo.pairs[pairKey("active", "sec1")] = true

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "active", SectionID: "sec1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErr.Code)
}

func TestEnrollmentServiceCreateSectionFull(t *testing.T) {
	svc, repo := newEnrollmentFixture(1)
	repo.occupied = 1

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "active", SectionID: "sec1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSectionFull.Code, appErr.Code)
}

func TestEnrollmentServiceCreateUnknownStudent(t *testing.T) {
	svc, _ := newEnrollmentFixture(30)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "missing", SectionID: "sec1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

// Concurrent requests for the final seats never admit more than capacity.
func TestEnrollmentServiceCreateConcurrentSeatLimit(t *testing.T) {
	const seats = 3
	const contenders = 12

	repo := &mockEnrollmentRepo{maxSeats: seats, pairs: make(map[string]bool), enrollments: make(map[string]models.Enrollment)}
	students := &mockStudentReader{students: make(map[string]models.Student)}
	for i := 0; i < contenders; i++ {
		id := string(rune('a' + i))
		students.students[id] = models.Student{ID: id, Name: "Student " + id, Status: models.StudentStatusActive}
	}
	sections := &mockSectionReader{sections: map[string]models.ClassSection{"sec1": {ID: "sec1", MaxSeats: seats}}}
	svc := NewEnrollmentService(repo, students, sections, nil, validator.New(), zap.NewNop())

	var wg sync.WaitGroup
	errs := make(chan error, contenders)
	for id := range students.students {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: studentID, SectionID: "sec1"})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var succeeded, full int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if appErrors.FromError(err).Code == appErrors.ErrSectionFull.Code {
			full++
		}
	}
	assert.Equal(t, seats, succeeded)
	assert.Equal(t, contenders-seats, full)
	assert.Equal(t, seats, repo.occupied)
}

func TestEnrollmentServiceDelete(t *testing.T) {
	svc, repo := newEnrollmentFixture(30)
	repo.enrollments["enr1"] = models.Enrollment{ID: "enr1", StudentID: "active", SectionID: "sec1"}

	err := svc.Delete(context.Background(), "enr1")
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "enr1")
}

func TestEnrollmentServiceDeleteNotFound(t *testing.T) {
	svc, _ := newEnrollmentFixture(30)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
