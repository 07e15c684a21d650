package dto

import (
	"time"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// LocationSample is a position update pushed by the driver's device.
type LocationSample struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timestamp *time.Time `json:"timestamp"`
	Speed     *float64   `json:"speed"`
	Heading   *float64   `json:"heading"`
}

// ToModel converts the sample, defaulting the timestamp to now.
func (s LocationSample) ToModel() models.BusLocation {
	ts := time.Now().UTC()
	if s.Timestamp != nil {
		ts = *s.Timestamp
	}
	return models.BusLocation{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timestamp: ts,
		Speed:     s.Speed,
		Heading:   s.Heading,
	}
}

// TrackingStatus reports the tracker state to the UI.
type TrackingStatus struct {
	Tracking         bool                `json:"tracking"`
	PermissionStatus string              `json:"permission_status"`
	Latest           *models.BusLocation `json:"latest,omitempty"`
	Error            string              `json:"error,omitempty"`
}
