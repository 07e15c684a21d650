package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, bool, error)
}

// DashboardHandler serves the aggregated counters.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler builds a new handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard counters and revenue partition
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{
		"cache_hit": cacheHit,
	})
}
