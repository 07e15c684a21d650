package models

import "time"

// BusLocation is a single GPS sample delivered by a location provider.
type BusLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
}

// PaymentInfo tracks the monthly transport fee for one student.
type PaymentInfo struct {
	MonthlyAmount   float64    `json:"monthly_amount"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`
	DueDate         time.Time  `json:"due_date"`
	IsPaid          bool       `json:"is_paid"`
	IsOverdue       bool       `json:"is_overdue"`
}

// Student is one roster entry. BoardedAt and AlightedAt each reflect the
// latest transition of their kind; a toggle only overwrites the matching one.
type Student struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Age             int         `json:"age"`
	Grade           string      `json:"grade"`
	Address         string      `json:"address"`
	PickupLocation  string      `json:"pickup_location"`
	DropoffLocation string      `json:"dropoff_location"`
	OnBus           bool        `json:"on_bus"`
	BoardedAt       *time.Time  `json:"boarded_at,omitempty"`
	AlightedAt      *time.Time  `json:"alighted_at,omitempty"`
	Payment         PaymentInfo `json:"payment"`
}

// Clone returns a deep copy of the student.
func (s Student) Clone() Student {
	out := s
	if s.BoardedAt != nil {
		t := *s.BoardedAt
		out.BoardedAt = &t
	}
	if s.AlightedAt != nil {
		t := *s.AlightedAt
		out.AlightedAt = &t
	}
	if s.Payment.LastPaymentDate != nil {
		t := *s.Payment.LastPaymentDate
		out.Payment.LastPaymentDate = &t
	}
	return out
}

// BusInfo holds the roster and identity of the single bus served by this
// instance.
type BusInfo struct {
	ID              string       `json:"id"`
	BusNumber       string       `json:"bus_number"`
	DriverName      string       `json:"driver_name"`
	Capacity        int          `json:"capacity"`
	Route           string       `json:"route"`
	CurrentLocation *BusLocation `json:"current_location,omitempty"`
	Students        []Student    `json:"students"`
}

// Clone returns a deep copy of the bus info.
func (b BusInfo) Clone() BusInfo {
	out := b
	if b.CurrentLocation != nil {
		loc := *b.CurrentLocation
		out.CurrentLocation = &loc
	}
	out.Students = make([]Student, len(b.Students))
	for i, s := range b.Students {
		out.Students[i] = s.Clone()
	}
	return out
}

// AttendanceAction labels a boarding or alighting transition.
type AttendanceAction string

const (
	ActionBoarded  AttendanceAction = "boarded"
	ActionAlighted AttendanceAction = "alighted"
)

// AttendanceRecord is an immutable log entry for one transition. StudentName
// is a snapshot taken at event time; later edits do not rewrite history.
type AttendanceRecord struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"student_id"`
	StudentName string           `json:"student_name"`
	Action      AttendanceAction `json:"action"`
	Timestamp   time.Time        `json:"timestamp"`
	Location    BusLocation      `json:"location"`
}
