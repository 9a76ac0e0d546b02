package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/service"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
	"github.com/sgescolar/secretaria-api/pkg/response"
)

// ServiceRequestHandler exposes secretariat request endpoints.
type ServiceRequestHandler struct {
	requests *service.ServiceRequestService
}

// NewServiceRequestHandler constructs ServiceRequestHandler.
func NewServiceRequestHandler(requests *service.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requests: requests}
}

// List godoc
// @Summary List service requests
// @Tags ServiceRequests
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param status query string false "Filter by status (ABERTO, EM_ANDAMENTO, CONCLUIDO)"
// @Param type query string false "Filter by type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /atendimentos [get]
func (h *ServiceRequestHandler) List(c *gin.Context) {
	var filter models.ServiceRequestFilter
	filter.StudentID = c.Query("student_id")
	filter.Status = models.ServiceRequestStatus(c.Query("status"))
	filter.Type = models.ServiceRequestType(c.Query("type"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")

	requests, pagination, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get service request detail
// @Tags ServiceRequests
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /atendimentos/{id} [get]
func (h *ServiceRequestHandler) Get(c *gin.Context) {
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Create godoc
// @Summary Open service request
// @Tags ServiceRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateServiceRequestRequest true "Service request payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /atendimentos [post]
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	var req service.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Update godoc
// @Summary Update service request
// @Tags ServiceRequests
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param payload body service.UpdateServiceRequestRequest true "Service request payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /atendimentos/{id} [put]
func (h *ServiceRequestHandler) Update(c *gin.Context) {
	var req service.UpdateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Delete godoc
// @Summary Delete service request
// @Tags ServiceRequests
// @Produce json
// @Param id path string true "Service request ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /atendimentos/{id} [delete]
func (h *ServiceRequestHandler) Delete(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Declaration godoc
// @Summary Download enrollment declaration PDF
// @Tags ServiceRequests
// @Produce application/pdf
// @Param id path string true "Service request ID"
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /atendimentos/{id}/declaracao [get]
func (h *ServiceRequestHandler) Declaration(c *gin.Context) {
	payload, filename, err := h.requests.Declaration(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
