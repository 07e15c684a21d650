package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context) []models.NotificationItem
	Add(ctx context.Context, req dto.CreateNotificationRequest) (*models.NotificationItem, error)
	MarkRead(ctx context.Context, id string)
	ClearAll(ctx context.Context)
	UnreadCount(ctx context.Context) int
}

// NotificationHandler exposes the notification endpoints.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler builds a new handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary List notifications, newest first
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	items := h.service.List(ctx)
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{
		"unread_count": h.service.UnreadCount(ctx),
	})
}

// Create godoc
// @Summary Add a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notification payload"))
		return
	}
	item, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Param id path string true "Notification id"
// @Success 204 {object} nil
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.service.MarkRead(c.Request.Context(), c.Param("id"))
	response.NoContent(c)
}

// ClearAll godoc
// @Summary Clear every notification
// @Tags Notifications
// @Success 204 {object} nil
// @Router /notifications [delete]
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	h.service.ClearAll(c.Request.Context())
	response.NoContent(c)
}
