package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/internal/location"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type locationTracker interface {
	Start(ctx context.Context) error
	Stop()
	Latest() *models.BusLocation
	Tracking() bool
	Permission() location.PermissionStatus
	Err() string
}

type sampleSink interface {
	Offer(loc models.BusLocation)
}

// LocationHandler ingests device position samples and controls the tracker.
type LocationHandler struct {
	sink    sampleSink
	tracker locationTracker
}

// NewLocationHandler builds a new handler.
func NewLocationHandler(sink sampleSink, tracker locationTracker) *LocationHandler {
	return &LocationHandler{sink: sink, tracker: tracker}
}

// PostSample godoc
// @Summary Push a position sample from the driver's device
// @Tags Location
// @Accept json
// @Param payload body dto.LocationSample true "Position sample"
// @Success 204 {object} nil
// @Router /location/samples [post]
func (h *LocationHandler) PostSample(c *gin.Context) {
	var req dto.LocationSample
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid location sample"))
		return
	}
	h.sink.Offer(req.ToModel())
	response.NoContent(c)
}

// Status godoc
// @Summary Tracker status and latest known position
// @Tags Location
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /location [get]
func (h *LocationHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.status(), nil)
}

// StartTracking godoc
// @Summary Start the position watch
// @Tags Location
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /location/tracking/start [post]
func (h *LocationHandler) StartTracking(c *gin.Context) {
	if err := h.tracker.Start(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.status(), nil)
}

// StopTracking godoc
// @Summary Stop the position watch and unsubscribe from the provider
// @Tags Location
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /location/tracking/stop [post]
func (h *LocationHandler) StopTracking(c *gin.Context) {
	h.tracker.Stop()
	response.JSON(c, http.StatusOK, h.status(), nil)
}

func (h *LocationHandler) status() dto.TrackingStatus {
	return dto.TrackingStatus{
		Tracking:         h.tracker.Tracking(),
		PermissionStatus: string(h.tracker.Permission()),
		Latest:           h.tracker.Latest(),
		Error:            h.tracker.Err(),
	}
}
