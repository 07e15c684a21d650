package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type rosterService interface {
	Bus(ctx context.Context) models.BusInfo
	Students(ctx context.Context) []models.Student
	Student(ctx context.Context, id string) (*models.Student, error)
	ToggleAttendance(ctx context.Context, id string, sample *models.BusLocation) (*models.Student, error)
	UpdateStudent(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error)
	UpdateDriverName(ctx context.Context, req dto.UpdateDriverRequest) error
	MarkPaymentAsPaid(ctx context.Context, id string) (*models.Student, error)
	AttendanceHistory(ctx context.Context, limit int) []models.AttendanceRecord
}

type latestLocationSource interface {
	Latest() *models.BusLocation
}

// RosterHandler exposes bus, student and attendance endpoints.
type RosterHandler struct {
	service      rosterService
	tracker      latestLocationSource
	historyLimit int
}

// NewRosterHandler builds a new handler. historyLimit is the default
// attendance window returned when the client does not ask for more.
func NewRosterHandler(service rosterService, tracker latestLocationSource, historyLimit int) *RosterHandler {
	if historyLimit <= 0 {
		historyLimit = 5
	}
	return &RosterHandler{service: service, tracker: tracker, historyLimit: historyLimit}
}

// GetBus godoc
// @Summary Current bus info and roster
// @Tags Bus
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bus [get]
func (h *RosterHandler) GetBus(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Bus(c.Request.Context()), nil)
}

// UpdateDriver godoc
// @Summary Rename the driver
// @Tags Bus
// @Accept json
// @Produce json
// @Param payload body dto.UpdateDriverRequest true "Driver payload"
// @Success 200 {object} response.Envelope
// @Router /bus/driver [patch]
func (h *RosterHandler) UpdateDriver(c *gin.Context) {
	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid driver payload"))
		return
	}
	if err := h.service.UpdateDriverName(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Bus(c.Request.Context()), nil)
}

// ListStudents godoc
// @Summary List the roster
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Students(c.Request.Context()), nil)
}

// GetStudent godoc
// @Summary Get one student
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *RosterHandler) GetStudent(c *gin.Context) {
	student, err := h.service.Student(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// UpdateStudent godoc
// @Summary Patch a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student id"
// @Param payload body dto.UpdateStudentRequest true "Sparse student patch"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *RosterHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.service.UpdateStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ToggleAttendance godoc
// @Summary Toggle a student on or off the bus
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student id"
// @Param payload body dto.ToggleAttendanceRequest false "Optional location fix"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/toggle [post]
func (h *RosterHandler) ToggleAttendance(c *gin.Context) {
	var req dto.ToggleAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}

	var sample *models.BusLocation
	if req.Location != nil {
		loc := req.Location.ToModel()
		sample = &loc
	} else if h.tracker != nil {
		sample = h.tracker.Latest()
	}

	student, err := h.service.ToggleAttendance(c.Request.Context(), c.Param("id"), sample)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// MarkPaymentAsPaid godoc
// @Summary Settle a student's payment
// @Tags Payments
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/payments [post]
func (h *RosterHandler) MarkPaymentAsPaid(c *gin.Context) {
	student, err := h.service.MarkPaymentAsPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// AttendanceHistory godoc
// @Summary Recent boarding/alighting events
// @Tags Students
// @Produce json
// @Param limit query int false "Maximum records, 0 for all"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *RosterHandler) AttendanceHistory(c *gin.Context) {
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer"))
			return
		}
		limit = parsed
	}
	response.JSON(c, http.StatusOK, h.service.AttendanceHistory(c.Request.Context(), limit), nil)
}
