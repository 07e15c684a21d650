package location

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
)

// Tracker manages the lifetime of one position watch: permission flow,
// initial fix, continuous updates and a deterministic stop. Samples are
// independent last-delivered-wins updates; after Stop no further sample is
// applied even if the provider keeps calling back.
type Tracker struct {
	provider Provider
	opts     WatchOptions
	onUpdate func(models.BusLocation)
	logger   *zap.Logger

	mu         sync.Mutex
	sub        Subscription
	latest     *models.BusLocation
	tracking   bool
	starting   bool
	permission PermissionStatus
	errMsg     string
}

// NewTracker builds a tracker. onUpdate, when non-nil, is invoked for every
// accepted sample (outside the tracker lock).
func NewTracker(provider Provider, opts WatchOptions, onUpdate func(models.BusLocation), logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		provider:   provider,
		opts:       opts,
		onUpdate:   onUpdate,
		logger:     logger,
		permission: PermissionUndetermined,
	}
}

// Start checks (and if needed requests) permission, takes an initial fix and
// subscribes to continuous updates. Calling Start while tracking or while
// another Start is in flight is a no-op: exactly one subscription may exist,
// otherwise Stop could not unsubscribe it deterministically.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.tracking || t.starting {
		t.mu.Unlock()
		return nil
	}
	t.starting = true
	t.mu.Unlock()

	status, err := t.provider.CheckPermission(ctx)
	if err != nil {
		t.abortStart("failed to check location permissions")
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check location permissions")
	}
	if status != PermissionGranted {
		status, err = t.provider.RequestPermission(ctx)
		if err != nil {
			t.abortStart("failed to request location permissions")
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to request location permissions")
		}
	}
	t.mu.Lock()
	t.permission = status
	t.mu.Unlock()
	if status != PermissionGranted {
		t.abortStart("Location permission denied. Please enable location services in settings.")
		return appErrors.Clone(appErrors.ErrPermissionDenied, "location permission denied")
	}

	t.mu.Lock()
	t.tracking = true
	t.starting = false
	t.errMsg = ""
	t.mu.Unlock()

	if initial, err := t.provider.CurrentPosition(ctx); err == nil && initial != nil {
		t.apply(*initial)
	} else if err != nil {
		t.logger.Warn("initial position fix failed", zap.Error(err))
	}

	sub, err := t.provider.WatchPosition(t.opts, t.apply)
	if err != nil {
		t.mu.Lock()
		t.tracking = false
		t.errMsg = "Failed to start location tracking"
		t.mu.Unlock()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start location tracking")
	}

	t.mu.Lock()
	if !t.tracking {
		// Stop won the race while the watch was being set up.
		t.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	t.sub = sub
	t.mu.Unlock()
	t.logger.Info("location tracking started")
	return nil
}

// Stop unsubscribes from the provider. After Stop returns, no further sample
// is applied; leaking an active subscription is the bug class this guards.
func (t *Tracker) Stop() {
	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.tracking = false
	t.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
		t.logger.Info("location tracking stopped")
	}
}

// Latest returns a copy of the last delivered sample, or nil before the
// first fix.
func (t *Tracker) Latest() *models.BusLocation {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return nil
	}
	loc := *t.latest
	return &loc
}

// Tracking reports whether a watch is active.
func (t *Tracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// Permission returns the last observed permission status.
func (t *Tracker) Permission() PermissionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permission
}

// Err returns the human-readable message of the last failure, empty when
// healthy. Permission errors are non-fatal and retryable via Start.
func (t *Tracker) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

func (t *Tracker) apply(loc models.BusLocation) {
	t.mu.Lock()
	if !t.tracking {
		t.mu.Unlock()
		return
	}
	l := loc
	t.latest = &l
	cb := t.onUpdate
	t.mu.Unlock()

	if cb != nil {
		cb(loc)
	}
}

func (t *Tracker) abortStart(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.starting = false
	t.errMsg = msg
}
