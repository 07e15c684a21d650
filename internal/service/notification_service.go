package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
)

type notificationStore interface {
	Insert(n models.NotificationItem)
	List() []models.NotificationItem
	MarkRead(id string) bool
	MarkReadByStudentAndType(studentID string, t models.NotificationType) int
	HasUnread(studentID string, t models.NotificationType) bool
	UnreadCount() int
	Clear()
}

// NotificationService owns the notification lifecycle: items are only ever
// created here (fresh id, current timestamp, unread), mutated via mark-read
// or clear-all, and never edited otherwise.
type NotificationService struct {
	store     notificationStore
	events    *EventBus
	validator *validator.Validate
	logger    *zap.Logger

	now func() time.Time
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(store notificationStore, events *EventBus, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		store:     store,
		events:    events,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Add creates a notification from an external request.
func (s *NotificationService) Add(ctx context.Context, req dto.CreateNotificationRequest) (*models.NotificationItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	item := s.AddItem(models.NotificationType(req.Type), req.Title, req.Message, req.StudentID, req.StudentName)
	return item, nil
}

// AddItem assigns a fresh id and timestamp, marks the item unread and
// prepends it. Used by the sweep and by payment settlement as well as Add.
func (s *NotificationService) AddItem(t models.NotificationType, title, message, studentID, studentName string) *models.NotificationItem {
	item := models.NotificationItem{
		ID:          "notif-" + uuid.NewString(),
		Type:        t,
		Title:       title,
		Message:     message,
		Timestamp:   s.now(),
		Read:        false,
		StudentID:   studentID,
		StudentName: studentName,
	}
	s.store.Insert(item)
	s.events.Publish(StoreEvent{Type: EventNotificationAdded, StudentID: studentID})
	return &item
}

// List returns all notifications, newest first.
func (s *NotificationService) List(ctx context.Context) []models.NotificationItem {
	return s.store.List()
}

// MarkRead flags a notification as read. Idempotent: unknown ids and
// already-read items are silent no-ops.
func (s *NotificationService) MarkRead(ctx context.Context, id string) {
	if s.store.MarkRead(id) {
		s.events.Publish(StoreEvent{Type: EventNotificationRead})
	}
}

// MarkOverdueRead flips every unread payment_overdue notification for the
// student to read, returning how many changed.
func (s *NotificationService) MarkOverdueRead(studentID string) int {
	changed := s.store.MarkReadByStudentAndType(studentID, models.NotificationPaymentOverdue)
	if changed > 0 {
		s.events.Publish(StoreEvent{Type: EventNotificationRead, StudentID: studentID})
	}
	return changed
}

// HasUnread reports whether an unread notification of the given type exists
// for the student.
func (s *NotificationService) HasUnread(studentID string, t models.NotificationType) bool {
	return s.store.HasUnread(studentID, t)
}

// UnreadCount counts unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context) int {
	return s.store.UnreadCount()
}

// ClearAll drops every notification; roster state is untouched.
func (s *NotificationService) ClearAll(ctx context.Context) {
	s.store.Clear()
	s.events.Publish(StoreEvent{Type: EventNotificationsCleared})
}

// formatAmount renders a monthly amount the way the driver app displays it:
// no trailing zeros, no thousands separators.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
