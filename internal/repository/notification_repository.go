package repository

import (
	"sync"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// NotificationRepository holds the in-memory notification list, newest first.
type NotificationRepository struct {
	mu    sync.RWMutex
	items []models.NotificationItem
}

// NewNotificationRepository returns an empty notification store.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// Insert prepends the notification so the list stays newest first.
func (r *NotificationRepository) Insert(n models.NotificationItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]models.NotificationItem{n}, r.items...)
}

// List returns a copy of all notifications, newest first.
func (r *NotificationRepository) List() []models.NotificationItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.NotificationItem, len(r.items))
	copy(out, r.items)
	return out
}

// MarkRead flags the notification as read. Idempotent; returns false when
// the id is unknown or the item was already read.
func (r *NotificationRepository) MarkRead(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			if r.items[i].Read {
				return false
			}
			r.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkReadByStudentAndType flags every matching notification as read and
// returns how many flipped.
func (r *NotificationRepository) MarkReadByStudentAndType(studentID string, t models.NotificationType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for i := range r.items {
		if r.items[i].StudentID == studentID && r.items[i].Type == t && !r.items[i].Read {
			r.items[i].Read = true
			changed++
		}
	}
	return changed
}

// HasUnread reports whether an unread notification of the given type exists
// for the student. The sweep uses this to avoid duplicate overdue alerts
// while a prior one is still unread.
func (r *NotificationRepository) HasUnread(studentID string, t models.NotificationType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.items {
		if n.StudentID == studentID && n.Type == t && !n.Read {
			return true
		}
	}
	return false
}

// UnreadCount counts notifications that have not been read.
func (r *NotificationRepository) UnreadCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Clear drops every notification. Roster state is untouched.
func (r *NotificationRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
