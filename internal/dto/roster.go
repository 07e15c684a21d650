package dto

import "time"

// PaymentPatch is a sparse override of PaymentInfo. Omitted fields keep
// their current value (shallow merge into the nested payment object).
type PaymentPatch struct {
	MonthlyAmount   *float64   `json:"monthly_amount" validate:"omitempty,gte=0"`
	DueDate         *time.Time `json:"due_date"`
	LastPaymentDate *time.Time `json:"last_payment_date"`
	IsPaid          *bool      `json:"is_paid"`
	IsOverdue       *bool      `json:"is_overdue"`
}

// UpdateStudentRequest is a sparse set of allowed student overrides.
// Validation happens here, at the caller layer; the store accepts anything.
type UpdateStudentRequest struct {
	Name            *string       `json:"name" validate:"omitempty,min=1"`
	Age             *int          `json:"age" validate:"omitempty,gte=1,lte=18"`
	Grade           *string       `json:"grade"`
	Address         *string       `json:"address"`
	PickupLocation  *string       `json:"pickup_location"`
	DropoffLocation *string       `json:"dropoff_location"`
	Payment         *PaymentPatch `json:"payment"`
}

// UpdateDriverRequest replaces the driver name unconditionally.
type UpdateDriverRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// ToggleAttendanceRequest optionally carries the device's location fix at
// toggle time. When absent the server falls back to the tracker's latest
// sample; with no sample at all the toggle still happens but no attendance
// record is logged.
type ToggleAttendanceRequest struct {
	Location *LocationSample `json:"location"`
}
