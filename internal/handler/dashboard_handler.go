package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgescolar/secretaria-api/internal/service"
	"github.com/sgescolar/secretaria-api/pkg/response"
)

// DashboardHandler exposes the landing page summary endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Dashboard summary counts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, fromCache, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if fromCache {
		c.Header("X-Cache", "HIT")
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
