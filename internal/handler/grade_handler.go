package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgescolar/secretaria-api/internal/service"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
	"github.com/sgescolar/secretaria-api/pkg/response"
)

// GradeHandler exposes academic record endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param enrollment_id query string false "Filter by enrollment"
// @Success 200 {object} response.Envelope
// @Router /notas [get]
func (h *GradeHandler) List(c *gin.Context) {
	grades, err := h.grades.List(c.Request.Context(), c.Query("enrollment_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// GetByEnrollment godoc
// @Summary Get grade for an enrollment
// @Tags Grades
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notas/matricula/{enrollmentId} [get]
func (h *GradeHandler) GetByEnrollment(c *gin.Context) {
	grade, err := h.grades.GetByEnrollment(c.Request.Context(), c.Param("enrollmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Upsert godoc
// @Summary Record or replace a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notas [post]
func (h *GradeHandler) Upsert(c *gin.Context) {
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
