package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
	"github.com/noah-isme/bus-tracker-api/pkg/export"
)

type exportRoster interface {
	Students() []models.Student
}

type exportAttendance interface {
	List(limit int) []models.AttendanceRecord
}

// ExportService renders payment and attendance reports as CSV or PDF.
type ExportService struct {
	roster     exportRoster
	attendance exportAttendance
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// ExportResult carries rendered report bytes and response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// NewExportService constructs an ExportService.
func NewExportService(roster exportRoster, attendance exportAttendance, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster:     roster,
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// PaymentReport renders the per-student payment state.
func (s *ExportService) PaymentReport(ctx context.Context, format string) (*ExportResult, error) {
	headers := []string{"Student", "Grade", "Monthly Amount", "Due Date", "Paid", "Overdue", "Last Payment"}
	rows := make([]map[string]string, 0)
	for _, st := range s.roster.Students() {
		lastPayment := ""
		if st.Payment.LastPaymentDate != nil {
			lastPayment = st.Payment.LastPaymentDate.Format("2006-01-02")
		}
		rows = append(rows, map[string]string{
			"Student":        st.Name,
			"Grade":          st.Grade,
			"Monthly Amount": formatAmount(st.Payment.MonthlyAmount),
			"Due Date":       st.Payment.DueDate.Format("2006-01-02"),
			"Paid":           strconv.FormatBool(st.Payment.IsPaid),
			"Overdue":        strconv.FormatBool(st.Payment.IsOverdue),
			"Last Payment":   lastPayment,
		})
	}
	return s.render(export.Dataset{Headers: headers, Rows: rows}, format, "payment-report")
}

// AttendanceReport renders the full attendance log, newest first.
func (s *ExportService) AttendanceReport(ctx context.Context, format string) (*ExportResult, error) {
	headers := []string{"Student", "Action", "Time", "Latitude", "Longitude"}
	rows := make([]map[string]string, 0)
	for _, rec := range s.attendance.List(0) {
		rows = append(rows, map[string]string{
			"Student":   rec.StudentName,
			"Action":    string(rec.Action),
			"Time":      rec.Timestamp.Format(time.RFC3339),
			"Latitude":  strconv.FormatFloat(rec.Location.Latitude, 'f', 6, 64),
			"Longitude": strconv.FormatFloat(rec.Location.Longitude, 'f', 6, 64),
		})
	}
	return s.render(export.Dataset{Headers: headers, Rows: rows}, format, "attendance-report")
}

func (s *ExportService) render(data export.Dataset, format, name string) (*ExportResult, error) {
	switch format {
	case "", "csv":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s.csv", name),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(data, name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s.pdf", name),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}
