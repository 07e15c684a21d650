package dto

// CreateNotificationRequest adds a notification directly. The id, timestamp
// and read flag are always assigned by the service.
type CreateNotificationRequest struct {
	Type        string `json:"type" validate:"required,oneof=payment_overdue payment_reminder attendance system"`
	Title       string `json:"title" validate:"required"`
	Message     string `json:"message" validate:"required"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}
