// Package seed provides a demo roster for local development so the API has
// data to serve before any client writes to it.
package seed

import (
	"time"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func timePtr(t time.Time) *time.Time { return &t }

// DemoBus returns a bus with six students in a mix of payment states: two
// already overdue (15 and 5 days past due) and four paid up. Dates are
// relative to now so the sweep finds the overdue ones immediately.
func DemoBus(now time.Time) models.BusInfo {
	return models.BusInfo{
		ID:         "bus-001",
		BusNumber:  "Bus #42",
		DriverName: "Michael Anderson",
		Capacity:   45,
		Route:      "Route A - North District",
		Students: []models.Student{
			{
				ID:              "1",
				Name:            "Emma Johnson",
				Age:             10,
				Grade:           "5th Grade",
				Address:         "123 Oak Street, Springfield",
				PickupLocation:  "123 Oak Street",
				DropoffLocation: "Lincoln Elementary",
				Payment: models.PaymentInfo{
					MonthlyAmount:   150,
					LastPaymentDate: timePtr(now.Add(-days(45))),
					DueDate:         now.Add(-days(15)),
					IsPaid:          false,
					IsOverdue:       true,
				},
			},
			{
				ID:              "2",
				Name:            "Liam Smith",
				Age:             9,
				Grade:           "4th Grade",
				Address:         "456 Maple Avenue, Springfield",
				PickupLocation:  "456 Maple Avenue",
				DropoffLocation: "Lincoln Elementary",
				Payment: models.PaymentInfo{
					MonthlyAmount:   150,
					LastPaymentDate: timePtr(now.Add(-days(10))),
					DueDate:         now.Add(days(20)),
					IsPaid:          true,
				},
			},
			{
				ID:              "3",
				Name:            "Olivia Brown",
				Age:             11,
				Grade:           "6th Grade",
				Address:         "789 Pine Road, Springfield",
				PickupLocation:  "789 Pine Road",
				DropoffLocation: "Washington Middle School",
				Payment: models.PaymentInfo{
					MonthlyAmount:   175,
					LastPaymentDate: timePtr(now.Add(-days(5))),
					DueDate:         now.Add(days(25)),
					IsPaid:          true,
				},
			},
			{
				ID:              "4",
				Name:            "Noah Davis",
				Age:             8,
				Grade:           "3rd Grade",
				Address:         "321 Elm Street, Springfield",
				PickupLocation:  "321 Elm Street",
				DropoffLocation: "Lincoln Elementary",
				Payment: models.PaymentInfo{
					MonthlyAmount:   150,
					LastPaymentDate: timePtr(now.Add(-days(35))),
					DueDate:         now.Add(-days(5)),
					IsPaid:          false,
					IsOverdue:       true,
				},
			},
			{
				ID:              "5",
				Name:            "Ava Wilson",
				Age:             10,
				Grade:           "5th Grade",
				Address:         "654 Birch Lane, Springfield",
				PickupLocation:  "654 Birch Lane",
				DropoffLocation: "Lincoln Elementary",
				Payment: models.PaymentInfo{
					MonthlyAmount:   150,
					LastPaymentDate: timePtr(now.Add(-days(8))),
					DueDate:         now.Add(days(22)),
					IsPaid:          true,
				},
			},
			{
				ID:              "6",
				Name:            "Ethan Martinez",
				Age:             9,
				Grade:           "4th Grade",
				Address:         "987 Cedar Court, Springfield",
				PickupLocation:  "987 Cedar Court",
				DropoffLocation: "Lincoln Elementary",
				Payment: models.PaymentInfo{
					MonthlyAmount:   150,
					LastPaymentDate: timePtr(now.Add(-days(12))),
					DueDate:         now.Add(days(18)),
					IsPaid:          true,
				},
			},
		},
	}
}
