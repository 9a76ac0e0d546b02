package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/handler"
	"github.com/sgescolar/secretaria-api/internal/middleware"
	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/service"
	"github.com/sgescolar/secretaria-api/pkg/config"
	"github.com/sgescolar/secretaria-api/pkg/logger"
	corsmiddleware "github.com/sgescolar/secretaria-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sgescolar/secretaria-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth            *handler.AuthHandler
	Students        *handler.StudentHandler
	ClassSections   *handler.ClassSectionHandler
	Enrollments     *handler.EnrollmentHandler
	Grades          *handler.GradeHandler
	ServiceRequests *handler.ServiceRequestHandler
	Dashboard       *handler.DashboardHandler
	Metrics         *handler.MetricsHandler
}

// Deps carries the cross-cutting pieces the router needs besides handlers.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Metrics *service.MetricsService
	Audit   middleware.AuditRecorder
}

// New assembles the gin engine with the full route table. Write access is
// restricted per resource: SECRETARIA operates day to day records while
// destructive removals stay with ADMIN.
func New(deps Deps, h Handlers) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)
	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", middleware.JWT(deps.Auth), h.Auth.Me)
	auth.POST("/change-password", middleware.JWT(deps.Auth), h.Auth.ChangePassword)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSecretaria)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	students := api.Group("/alunos", middleware.JWT(deps.Auth))
	students.GET("", h.Students.List)
	students.GET("/export", h.Students.Export)
	students.GET("/:id", h.Students.Get)
	students.POST("", staff, middleware.Audit(deps.Audit, models.AuditActionCreate, "students"), h.Students.Create)
	students.PUT("/:id", staff, middleware.Audit(deps.Audit, models.AuditActionUpdate, "students"), h.Students.Update)
	students.DELETE("/:id", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "students"), h.Students.Delete)

	sections := api.Group("/turmas", middleware.JWT(deps.Auth))
	sections.GET("", h.ClassSections.List)
	sections.GET("/:id", h.ClassSections.Get)
	sections.POST("", staff, middleware.Audit(deps.Audit, models.AuditActionCreate, "class_sections"), h.ClassSections.Create)
	sections.PUT("/:id", staff, middleware.Audit(deps.Audit, models.AuditActionUpdate, "class_sections"), h.ClassSections.Update)
	sections.DELETE("/:id", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "class_sections"), h.ClassSections.Delete)

	enrollments := api.Group("/matriculas", middleware.JWT(deps.Auth), staff)
	enrollments.GET("", h.Enrollments.List)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.POST("", middleware.Audit(deps.Audit, models.AuditActionCreate, "enrollments"), h.Enrollments.Create)
	enrollments.DELETE("/:id", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "enrollments"), h.Enrollments.Delete)

	grades := api.Group("/notas", middleware.JWT(deps.Auth), staff)
	grades.GET("", h.Grades.List)
	grades.GET("/matricula/:enrollmentId", h.Grades.GetByEnrollment)
	grades.POST("", middleware.Audit(deps.Audit, models.AuditActionUpsert, "grades"), h.Grades.Upsert)

	requests := api.Group("/atendimentos", middleware.JWT(deps.Auth), staff)
	requests.GET("", h.ServiceRequests.List)
	requests.GET("/:id", h.ServiceRequests.Get)
	requests.GET("/:id/declaracao", h.ServiceRequests.Declaration)
	requests.POST("", middleware.Audit(deps.Audit, models.AuditActionCreate, "service_requests"), h.ServiceRequests.Create)
	requests.PUT("/:id", middleware.Audit(deps.Audit, models.AuditActionUpdate, "service_requests"), h.ServiceRequests.Update)
	requests.DELETE("/:id", adminOnly, middleware.Audit(deps.Audit, models.AuditActionDelete, "service_requests"), h.ServiceRequests.Delete)

	api.GET("/dashboard", middleware.JWT(deps.Auth), h.Dashboard.Summary)

	return r
}
