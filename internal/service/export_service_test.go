package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/internal/repository"
)

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	roster := repository.NewRosterRepository(testRoster())
	attendance := repository.NewAttendanceRepository()
	attendance.Insert(models.AttendanceRecord{
		ID:          "rec-1",
		StudentID:   "1",
		StudentName: "Emma Johnson",
		Action:      models.ActionBoarded,
		Timestamp:   time.Date(2026, 3, 10, 7, 45, 0, 0, time.UTC),
		Location:    models.BusLocation{Latitude: 40.7128, Longitude: -74.006},
	})
	return NewExportService(roster, attendance, nil)
}

func TestPaymentReportCSV(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.PaymentReport(context.Background(), "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "payment-report.csv", result.Filename)

	content := string(result.Content)
	assert.Contains(t, content, "Student")
	assert.Contains(t, content, "Emma Johnson")
	assert.Contains(t, content, "Liam Smith")
	assert.Contains(t, content, "150")
}

func TestPaymentReportDefaultsToCSV(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.PaymentReport(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestAttendanceReportCSV(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.AttendanceReport(context.Background(), "csv")
	require.NoError(t, err)

	content := string(result.Content)
	assert.Contains(t, content, "Emma Johnson")
	assert.Contains(t, content, "boarded")
	assert.Contains(t, content, "40.712800")
}

func TestPaymentReportPDF(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.PaymentReport(context.Background(), "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "payment-report.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.PaymentReport(context.Background(), "xlsx")
	require.Error(t, err)
}
