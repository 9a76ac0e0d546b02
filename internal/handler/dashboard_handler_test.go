package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/service"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type fakeStudentCounter struct{ count int }

func (f fakeStudentCounter) CountByStatus(ctx context.Context, status models.StudentStatus) (int, error) {
	return f.count, nil
}

type fakeSectionCounter struct{ count int }

func (f fakeSectionCounter) Count(ctx context.Context) (int, error) { return f.count, nil }

type fakeEnrollmentCounter struct{ count int }

func (f fakeEnrollmentCounter) Count(ctx context.Context) (int, error) { return f.count, nil }

type fakeRequestCounter struct{ count int }

func (f fakeRequestCounter) CountByStatus(ctx context.Context, status models.ServiceRequestStatus) (int, error) {
	return f.count, nil
}

type fakeCacheRepo struct {
	entries map[string][]byte
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.entries == nil {
		f.entries = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = payload
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.entries = make(map[string][]byte)
	return nil
}

func newDashboardHandler(cache *service.CacheService) *DashboardHandler {
	svc := service.NewDashboardService(
		fakeStudentCounter{count: 42},
		fakeSectionCounter{count: 6},
		fakeEnrollmentCounter{count: 98},
		fakeRequestCounter{count: 3},
		cache,
		time.Minute,
		nil,
	)
	return NewDashboardHandler(svc)
}

func TestDashboardHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	var envelope struct {
		Data models.DashboardSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 42, envelope.Data.ActiveStudents)
	assert.Equal(t, 6, envelope.Data.OpenSections)
	assert.Equal(t, 98, envelope.Data.TermEnrollments)
	assert.Equal(t, 3, envelope.Data.OpenServiceRequests)
}

func TestDashboardHandlerSummaryCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := service.NewCacheService(&fakeCacheRepo{}, nil, time.Minute, nil, true)
	handler := newDashboardHandler(cache)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	handler.Summary(c)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}
