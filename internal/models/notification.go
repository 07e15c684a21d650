package models

import "time"

// NotificationType categorises in-app notifications.
type NotificationType string

const (
	NotificationPaymentOverdue  NotificationType = "payment_overdue"
	NotificationPaymentReminder NotificationType = "payment_reminder"
	NotificationAttendance      NotificationType = "attendance"
	NotificationSystem          NotificationType = "system"
)

// NotificationItem is an in-app notification. Items are created by the
// services, mutated only via mark-read or clear-all, and never edited
// otherwise.
type NotificationItem struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
	StudentID   string           `json:"student_id,omitempty"`
	StudentName string           `json:"student_name,omitempty"`
}
