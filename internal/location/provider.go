package location

import (
	"context"
	"time"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// PermissionStatus mirrors the three-state permission model of mobile
// location services.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// WatchOptions tunes a continuous position watch. Providers deliver a sample
// every Interval or whenever the device moves Distance meters, whichever
// comes first.
type WatchOptions struct {
	Interval time.Duration
	Distance float64
}

// Subscription is a handle on an active position watch.
type Subscription interface {
	Unsubscribe()
}

// Provider abstracts the platform location service: permission flow, a
// one-shot fix and a continuous watch.
type Provider interface {
	CheckPermission(ctx context.Context) (PermissionStatus, error)
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	CurrentPosition(ctx context.Context) (*models.BusLocation, error)
	WatchPosition(opts WatchOptions, fn func(models.BusLocation)) (Subscription, error)
}
