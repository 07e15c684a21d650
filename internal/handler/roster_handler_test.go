package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/internal/repository"
	"github.com/noah-isme/bus-tracker-api/internal/service"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type stubLatestSource struct {
	latest *models.BusLocation
}

func (s *stubLatestSource) Latest() *models.BusLocation { return s.latest }

func handlerTestBus() models.BusInfo {
	return models.BusInfo{
		ID:         "bus-001",
		BusNumber:  "Bus #42",
		DriverName: "Michael Anderson",
		Capacity:   45,
		Route:      "Route A",
		Students: []models.Student{
			{
				ID:    "1",
				Name:  "Emma Johnson",
				Age:   10,
				Grade: "5th Grade",
				Payment: models.PaymentInfo{
					MonthlyAmount: 150,
					DueDate:       time.Now().UTC().Add(-24 * time.Hour),
					IsOverdue:     true,
				},
			},
		},
	}
}

type rosterHandlerFixture struct {
	router     *gin.Engine
	attendance *repository.AttendanceRepository
	tracker    *stubLatestSource
}

func newRosterRouter(t *testing.T) *rosterHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events := service.NewEventBus()
	notifStore := repository.NewNotificationRepository()
	notifications := service.NewNotificationService(notifStore, events, nil, nil)
	roster := repository.NewRosterRepository(handlerTestBus())
	attendance := repository.NewAttendanceRepository()
	svc := service.NewRosterService(roster, attendance, notifications, events, nil, nil, 0)

	tracker := &stubLatestSource{}
	h := NewRosterHandler(svc, tracker, 5)

	r := gin.New()
	r.GET("/bus", h.GetBus)
	r.PATCH("/bus/driver", h.UpdateDriver)
	r.GET("/students", h.ListStudents)
	r.GET("/students/:id", h.GetStudent)
	r.PATCH("/students/:id", h.UpdateStudent)
	r.POST("/students/:id/toggle", h.ToggleAttendance)
	r.POST("/students/:id/payments", h.MarkPaymentAsPaid)
	r.GET("/attendance", h.AttendanceHistory)

	return &rosterHandlerFixture{router: r, attendance: attendance, tracker: tracker}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestGetBus(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodGet, "/bus", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "Bus #42", data["bus_number"])
	assert.Len(t, data["students"], 1)
}

func TestGetStudentNotFound(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodGet, "/students/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestToggleAttendanceEmptyBody(t *testing.T) {
	f := newRosterRouter(t)

	// No body and no tracker fix: the toggle succeeds, nothing is logged.
	w := doJSON(t, f.router, http.MethodPost, "/students/1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, true, data["on_bus"])
	assert.Equal(t, 0, f.attendance.Count())
}

func TestToggleAttendanceWithBodyLocation(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodPost, "/students/1/toggle", map[string]interface{}{
		"location": map[string]interface{}{"latitude": 40.7, "longitude": -74.0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, f.attendance.Count())

	rec := f.attendance.List(1)[0]
	assert.Equal(t, 40.7, rec.Location.Latitude)
	assert.Equal(t, models.ActionBoarded, rec.Action)
}

func TestToggleAttendanceFallsBackToTracker(t *testing.T) {
	f := newRosterRouter(t)
	f.tracker.latest = &models.BusLocation{Latitude: 1.5, Longitude: 2.5, Timestamp: time.Now().UTC()}

	w := doJSON(t, f.router, http.MethodPost, "/students/1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, f.attendance.Count())
	assert.Equal(t, 1.5, f.attendance.List(1)[0].Location.Latitude)
}

func TestUpdateStudentPatch(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodPatch, "/students/1", map[string]interface{}{
		"name": "Emma J.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, "Emma J.", data["name"])
	assert.Equal(t, float64(10), data["age"])
}

func TestUpdateStudentInvalidAge(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodPatch, "/students/1", map[string]interface{}{
		"age": 40,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkPaymentAsPaidEndpoint(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodPost, "/students/1/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	payment := data["payment"].(map[string]interface{})
	assert.Equal(t, true, payment["is_paid"])
	assert.Equal(t, false, payment["is_overdue"])
}

func TestUpdateDriverEndpoint(t *testing.T) {
	f := newRosterRouter(t)

	w := doJSON(t, f.router, http.MethodPatch, "/bus/driver", map[string]interface{}{
		"name": "Sarah Connor",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, "Sarah Connor", data["driver_name"])
}

func TestAttendanceHistoryLimitParam(t *testing.T) {
	f := newRosterRouter(t)
	for i := 0; i < 7; i++ {
		doJSON(t, f.router, http.MethodPost, "/students/1/toggle", map[string]interface{}{
			"location": map[string]interface{}{"latitude": 1.0, "longitude": 2.0},
		})
	}

	w := doJSON(t, f.router, http.MethodGet, "/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeEnvelope(t, w).Data, 5, "default display window")

	w = doJSON(t, f.router, http.MethodGet, "/attendance?limit=0", nil)
	assert.Len(t, decodeEnvelope(t, w).Data, 7)

	w = doJSON(t, f.router, http.MethodGet, "/attendance?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
