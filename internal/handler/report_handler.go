package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/service"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type exportService interface {
	PaymentReport(ctx context.Context, format string) (*service.ExportResult, error)
	AttendanceReport(ctx context.Context, format string) (*service.ExportResult, error)
}

// ReportHandler streams rendered payment and attendance reports.
type ReportHandler struct {
	service exportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(service exportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// PaymentReport godoc
// @Summary Download the payment report
// @Tags Reports
// @Param format query string false "csv or pdf" default(csv)
// @Produce text/csv
// @Produce application/pdf
// @Success 200 {file} file
// @Router /reports/payments [get]
func (h *ReportHandler) PaymentReport(c *gin.Context) {
	result, err := h.service.PaymentReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, result)
}

// AttendanceReport godoc
// @Summary Download the attendance report
// @Tags Reports
// @Param format query string false "csv or pdf" default(csv)
// @Produce text/csv
// @Produce application/pdf
// @Success 200 {file} file
// @Router /reports/attendance [get]
func (h *ReportHandler) AttendanceReport(c *gin.Context) {
	result, err := h.service.AttendanceReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, result)
}

func (h *ReportHandler) write(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
