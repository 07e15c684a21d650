package location

import (
	"context"
	"fmt"
	"sync"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// PushProvider is a Provider fed by position samples the driver's device
// pushes over HTTP. Permission is always granted; the device decided that
// before it started posting.
type PushProvider struct {
	mu       sync.Mutex
	latest   *models.BusLocation
	watchers map[int]func(models.BusLocation)
	next     int
}

// NewPushProvider returns an empty push provider.
func NewPushProvider() *PushProvider {
	return &PushProvider{watchers: make(map[int]func(models.BusLocation))}
}

// Offer records a pushed sample and fans it out to active watchers.
func (p *PushProvider) Offer(loc models.BusLocation) {
	p.mu.Lock()
	l := loc
	p.latest = &l
	fns := make([]func(models.BusLocation), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}

// CheckPermission always reports granted.
func (p *PushProvider) CheckPermission(context.Context) (PermissionStatus, error) {
	return PermissionGranted, nil
}

// RequestPermission always reports granted.
func (p *PushProvider) RequestPermission(context.Context) (PermissionStatus, error) {
	return PermissionGranted, nil
}

// CurrentPosition returns the last pushed sample.
func (p *PushProvider) CurrentPosition(context.Context) (*models.BusLocation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return nil, fmt.Errorf("no position sample received yet")
	}
	loc := *p.latest
	return &loc, nil
}

// WatchPosition registers fn for every future sample. Watch options are
// irrelevant here; the push cadence is whatever the device sends.
func (p *PushProvider) WatchPosition(_ WatchOptions, fn func(models.BusLocation)) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.watchers[id] = fn
	return &pushSubscription{provider: p, id: id}, nil
}

type pushSubscription struct {
	provider *PushProvider
	once     sync.Once
	id       int
}

// Unsubscribe removes the watcher. Safe to call more than once.
func (s *pushSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.provider.mu.Lock()
		defer s.provider.mu.Unlock()
		delete(s.provider.watchers, s.id)
	})
}
