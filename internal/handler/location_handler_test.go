package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-tracker-api/internal/location"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/internal/repository"
	"github.com/noah-isme/bus-tracker-api/internal/service"
)

type locationHandlerFixture struct {
	router   *gin.Engine
	provider *location.PushProvider
	tracker  *location.Tracker
	roster   *repository.RosterRepository
}

func newLocationRouter(t *testing.T) *locationHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events := service.NewEventBus()
	notifStore := repository.NewNotificationRepository()
	notifications := service.NewNotificationService(notifStore, events, nil, nil)
	roster := repository.NewRosterRepository(handlerTestBus())
	attendance := repository.NewAttendanceRepository()
	svc := service.NewRosterService(roster, attendance, notifications, events, nil, nil, 0)

	provider := location.NewPushProvider()
	tracker := location.NewTracker(provider, location.WatchOptions{}, svc.ApplyLocation, nil)
	h := NewLocationHandler(provider, tracker)

	r := gin.New()
	r.GET("/location", h.Status)
	r.POST("/location/samples", h.PostSample)
	r.POST("/location/tracking/start", h.StartTracking)
	r.POST("/location/tracking/stop", h.StopTracking)

	return &locationHandlerFixture{router: r, provider: provider, tracker: tracker, roster: roster}
}

func TestLocationStatusBeforeTracking(t *testing.T) {
	f := newLocationRouter(t)

	w := doJSON(t, f.router, http.MethodGet, "/location", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, false, data["tracking"])
	assert.Equal(t, "undetermined", data["permission_status"])
}

func TestTrackingLifecycleViaHTTP(t *testing.T) {
	f := newLocationRouter(t)
	defer f.tracker.Stop()

	// Seed one sample so the initial fix succeeds.
	f.provider.Offer(models.BusLocation{Latitude: 40.7, Longitude: -74.0})

	w := doJSON(t, f.router, http.MethodPost, "/location/tracking/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["tracking"])
	assert.Equal(t, "granted", data["permission_status"])

	// Samples posted while tracking reach the roster's current location.
	w = doJSON(t, f.router, http.MethodPost, "/location/samples", map[string]interface{}{
		"latitude":  41.0,
		"longitude": -73.5,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	loc := f.roster.Bus().CurrentLocation
	require.NotNil(t, loc)
	assert.Equal(t, 41.0, loc.Latitude)

	w = doJSON(t, f.router, http.MethodPost, "/location/tracking/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, false, data["tracking"])
}

func TestPostSampleRejectsBadPayload(t *testing.T) {
	f := newLocationRouter(t)

	w := doJSON(t, f.router, http.MethodPost, "/location/samples", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
