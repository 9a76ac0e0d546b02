package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

const dashboardSummaryCacheKey = "dashboard:summary"

type dashboardStudentCounter interface {
	CountByStatus(ctx context.Context, status models.StudentStatus) (int, error)
}

type dashboardSectionCounter interface {
	Count(ctx context.Context) (int, error)
}

type dashboardEnrollmentCounter interface {
	Count(ctx context.Context) (int, error)
}

type dashboardServiceRequestCounter interface {
	CountByStatus(ctx context.Context, status models.ServiceRequestStatus) (int, error)
}

// DashboardService aggregates the landing page counters.
type DashboardService struct {
	students        dashboardStudentCounter
	sections        dashboardSectionCounter
	enrollments     dashboardEnrollmentCounter
	serviceRequests dashboardServiceRequestCounter
	cache           *CacheService
	cacheTTL        time.Duration
	logger          *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(students dashboardStudentCounter, sections dashboardSectionCounter, enrollments dashboardEnrollmentCounter, serviceRequests dashboardServiceRequestCounter, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:        students,
		sections:        sections,
		enrollments:     enrollments,
		serviceRequests: serviceRequests,
		cache:           cache,
		cacheTTL:        cacheTTL,
		logger:          logger,
	}
}

// Summary returns the aggregate counts and reports whether the cache served
// them. Counts are always derived from the live tables when the cache misses.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if s.cache.Enabled() {
		var cached models.DashboardSummary
		hit, err := s.cache.Get(ctx, dashboardSummaryCacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache lookup failed", zap.Error(err))
		}
		if hit {
			return &cached, true, nil
		}
	}

	activeStudents, err := s.students.CountByStatus(ctx, models.StudentStatusActive)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to count active students")
	}
	openSections, err := s.sections.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to count class sections")
	}
	termEnrollments, err := s.enrollments.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to count enrollments")
	}
	openRequests, err := s.serviceRequests.CountByStatus(ctx, models.ServiceRequestOpen)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to count service requests")
	}

	summary := &models.DashboardSummary{
		ActiveStudents:      activeStudents,
		OpenSections:        openSections,
		TermEnrollments:     termEnrollments,
		OpenServiceRequests: openRequests,
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, dashboardSummaryCacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache store failed", zap.Error(err))
		}
	}
	return summary, false, nil
}
