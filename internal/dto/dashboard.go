package dto

import "time"

// DashboardSummary aggregates the derived counters recomputed on every read.
type DashboardSummary struct {
	BusID               string    `json:"bus_id"`
	BusNumber           string    `json:"bus_number"`
	Route               string    `json:"route"`
	Capacity            int       `json:"capacity"`
	TotalStudents       int       `json:"total_students"`
	OnBusCount          int       `json:"on_bus_count"`
	OverdueCount        int       `json:"overdue_count"`
	UnreadNotifications int       `json:"unread_notifications"`
	TotalMonthlyRevenue float64   `json:"total_monthly_revenue"`
	CollectedRevenue    float64   `json:"collected_revenue"`
	OutstandingRevenue  float64   `json:"outstanding_revenue"`
	GeneratedAt         time.Time `json:"generated_at"`
}
