package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// fakeProvider scripts the permission flow and captures watch callbacks so
// tests can push samples at will.
type fakeProvider struct {
	mu             sync.Mutex
	checkStatus    PermissionStatus
	requestStatus  PermissionStatus
	current        *models.BusLocation
	currentErr     error
	watchErr       error
	watchFn        func(models.BusLocation)
	unsubscribed   bool
	requestedCount int
}

func (p *fakeProvider) CheckPermission(context.Context) (PermissionStatus, error) {
	return p.checkStatus, nil
}

func (p *fakeProvider) RequestPermission(context.Context) (PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestedCount++
	return p.requestStatus, nil
}

func (p *fakeProvider) CurrentPosition(context.Context) (*models.BusLocation, error) {
	if p.currentErr != nil {
		return nil, p.currentErr
	}
	return p.current, nil
}

func (p *fakeProvider) WatchPosition(_ WatchOptions, fn func(models.BusLocation)) (Subscription, error) {
	if p.watchErr != nil {
		return nil, p.watchErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watchFn = fn
	p.unsubscribed = false
	return fakeSubscription{provider: p}, nil
}

func (p *fakeProvider) push(loc models.BusLocation) {
	p.mu.Lock()
	fn := p.watchFn
	p.mu.Unlock()
	if fn != nil {
		fn(loc)
	}
}

func (p *fakeProvider) isUnsubscribed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unsubscribed
}

type fakeSubscription struct {
	provider *fakeProvider
}

func (s fakeSubscription) Unsubscribe() {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	s.provider.unsubscribed = true
	s.provider.watchFn = nil
}

func sampleAt(lat, lon float64) models.BusLocation {
	return models.BusLocation{Latitude: lat, Longitude: lon, Timestamp: time.Now().UTC()}
}

func TestTrackerStartDeliversInitialFixAndUpdates(t *testing.T) {
	initial := sampleAt(40.7, -74.0)
	provider := &fakeProvider{
		checkStatus: PermissionGranted,
		current:     &initial,
	}

	var mu sync.Mutex
	var received []models.BusLocation
	tracker := NewTracker(provider, WatchOptions{}, func(loc models.BusLocation) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, loc)
	}, nil)

	require.NoError(t, tracker.Start(context.Background()))
	assert.True(t, tracker.Tracking())
	assert.Equal(t, PermissionGranted, tracker.Permission())
	assert.Empty(t, tracker.Err())

	provider.push(sampleAt(40.8, -74.1))

	latest := tracker.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 40.8, latest.Latitude)

	mu.Lock()
	assert.Len(t, received, 2, "initial fix plus one watch sample")
	mu.Unlock()
}

func TestTrackerStartRequestsPermissionWhenUndetermined(t *testing.T) {
	provider := &fakeProvider{
		checkStatus:   PermissionUndetermined,
		requestStatus: PermissionGranted,
		currentErr:    errors.New("no fix yet"),
	}
	tracker := NewTracker(provider, WatchOptions{}, nil, nil)

	require.NoError(t, tracker.Start(context.Background()))
	assert.Equal(t, 1, provider.requestedCount)
	assert.True(t, tracker.Tracking())
	assert.Nil(t, tracker.Latest(), "failed initial fix is non-fatal")
}

func TestTrackerPermissionDenied(t *testing.T) {
	provider := &fakeProvider{
		checkStatus:   PermissionUndetermined,
		requestStatus: PermissionDenied,
	}
	tracker := NewTracker(provider, WatchOptions{}, nil, nil)

	err := tracker.Start(context.Background())
	require.Error(t, err)
	assert.False(t, tracker.Tracking())
	assert.Equal(t, PermissionDenied, tracker.Permission())
	assert.Equal(t, "Location permission denied. Please enable location services in settings.", tracker.Err())

	// Denial is retryable: a later grant succeeds.
	provider.requestStatus = PermissionGranted
	provider.currentErr = errors.New("no fix")
	require.NoError(t, tracker.Start(context.Background()))
	assert.True(t, tracker.Tracking())
	assert.Empty(t, tracker.Err())
}

func TestTrackerStopUnsubscribes(t *testing.T) {
	initial := sampleAt(1, 2)
	provider := &fakeProvider{checkStatus: PermissionGranted, current: &initial}
	tracker := NewTracker(provider, WatchOptions{}, nil, nil)

	require.NoError(t, tracker.Start(context.Background()))
	tracker.Stop()

	assert.True(t, provider.isUnsubscribed())
	assert.False(t, tracker.Tracking())

	// Stop twice is safe.
	tracker.Stop()
}

func TestTrackerIgnoresSamplesAfterStop(t *testing.T) {
	initial := sampleAt(1, 2)
	provider := &fakeProvider{checkStatus: PermissionGranted, current: &initial}

	var mu sync.Mutex
	count := 0
	tracker := NewTracker(provider, WatchOptions{}, func(models.BusLocation) {
		mu.Lock()
		defer mu.Unlock()
		count++
	}, nil)

	require.NoError(t, tracker.Start(context.Background()))
	fn := provider.watchFn
	tracker.Stop()

	// A provider racing Stop may still call back; the sample must be dropped.
	if fn != nil {
		fn(sampleAt(9, 9))
	}

	latest := tracker.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, float64(1), latest.Latitude)
	mu.Lock()
	assert.Equal(t, 1, count, "only the pre-stop fix reached the callback")
	mu.Unlock()
}

// slowProvider counts live subscriptions and stalls the permission check so
// overlapping Start calls actually overlap.
type slowProvider struct {
	mu         sync.Mutex
	active     int
	subscribed int
	delay      time.Duration
}

func (p *slowProvider) CheckPermission(context.Context) (PermissionStatus, error) {
	time.Sleep(p.delay)
	return PermissionGranted, nil
}

func (p *slowProvider) RequestPermission(context.Context) (PermissionStatus, error) {
	return PermissionGranted, nil
}

func (p *slowProvider) CurrentPosition(context.Context) (*models.BusLocation, error) {
	return nil, errors.New("no fix")
}

func (p *slowProvider) WatchPosition(_ WatchOptions, _ func(models.BusLocation)) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active++
	p.subscribed++
	return &countedSubscription{provider: p}, nil
}

func (p *slowProvider) activeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

type countedSubscription struct {
	provider *slowProvider
	once     sync.Once
}

func (s *countedSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.provider.mu.Lock()
		defer s.provider.mu.Unlock()
		s.provider.active--
	})
}

func TestTrackerConcurrentStartSubscribesOnce(t *testing.T) {
	provider := &slowProvider{delay: 50 * time.Millisecond}
	tracker := NewTracker(provider, WatchOptions{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, tracker.Start(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.subscribed, "overlapping Start calls must subscribe once")

	tracker.Stop()
	assert.Equal(t, 0, provider.activeCount(), "Stop must leave no live subscription")
	assert.False(t, tracker.Tracking())
}

func TestTrackerStartTwiceIsNoOp(t *testing.T) {
	initial := sampleAt(1, 2)
	provider := &fakeProvider{checkStatus: PermissionGranted, current: &initial}
	tracker := NewTracker(provider, WatchOptions{}, nil, nil)

	require.NoError(t, tracker.Start(context.Background()))
	require.NoError(t, tracker.Start(context.Background()))
	assert.True(t, tracker.Tracking())
}

func TestTrackerWatchFailure(t *testing.T) {
	initial := sampleAt(1, 2)
	provider := &fakeProvider{
		checkStatus: PermissionGranted,
		current:     &initial,
		watchErr:    errors.New("watch unavailable"),
	}
	tracker := NewTracker(provider, WatchOptions{}, nil, nil)

	err := tracker.Start(context.Background())
	require.Error(t, err)
	assert.False(t, tracker.Tracking())
	assert.Equal(t, "Failed to start location tracking", tracker.Err())
}

func TestPushProviderFansOutToWatchers(t *testing.T) {
	provider := NewPushProvider()

	_, err := provider.CurrentPosition(context.Background())
	require.Error(t, err, "no sample yet")

	var mu sync.Mutex
	var got []models.BusLocation
	sub, err := provider.WatchPosition(WatchOptions{}, func(loc models.BusLocation) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, loc)
	})
	require.NoError(t, err)

	provider.Offer(sampleAt(3, 4))

	current, err := provider.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(3), current.Latitude)

	sub.Unsubscribe()
	sub.Unsubscribe()
	provider.Offer(sampleAt(5, 6))

	mu.Lock()
	assert.Len(t, got, 1, "no delivery after unsubscribe")
	mu.Unlock()

	status, err := provider.CheckPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, status)
}
