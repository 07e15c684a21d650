package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/internal/models"
)

const dashboardCacheKey = "dashboard:summary"

type dashboardRoster interface {
	Bus() models.BusInfo
}

type dashboardNotifications interface {
	UnreadCount() int
}

// DashboardService centralizes the derived read-only values so they cannot
// drift from the mutation logic: on-bus count, overdue count, unread count
// and the monthly revenue partition. Values are recomputed from store state
// on every read; the cache only shortcuts repeated reads within the TTL and
// is invalidated whenever any mutation event fires.
type DashboardService struct {
	roster        dashboardRoster
	notifications dashboardNotifications
	cache         *CacheService
	events        *EventBus
	logger        *zap.Logger
	ttl           time.Duration

	now func() time.Time

	mu          sync.Mutex
	cancelWatch func()
	watchDone   chan struct{}
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	roster dashboardRoster,
	notifications dashboardNotifications,
	cache *CacheService,
	events *EventBus,
	logger *zap.Logger,
	ttl time.Duration,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		roster:        roster,
		notifications: notifications,
		cache:         cache,
		events:        events,
		logger:        logger,
		ttl:           ttl,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Summary computes the dashboard counters. The second return reports a
// cache hit.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	var cached dto.DashboardSummary
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	bus := s.roster.Bus()
	summary := dto.DashboardSummary{
		BusID:         bus.ID,
		BusNumber:     bus.BusNumber,
		Route:         bus.Route,
		Capacity:      bus.Capacity,
		TotalStudents: len(bus.Students),
		GeneratedAt:   s.now(),
	}
	for _, st := range bus.Students {
		if st.OnBus {
			summary.OnBusCount++
		}
		if st.Payment.IsOverdue {
			summary.OverdueCount++
		}
		summary.TotalMonthlyRevenue += st.Payment.MonthlyAmount
		if st.Payment.IsPaid {
			summary.CollectedRevenue += st.Payment.MonthlyAmount
		} else {
			summary.OutstandingRevenue += st.Payment.MonthlyAmount
		}
	}
	summary.UnreadNotifications = s.notifications.UnreadCount()

	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.ttl); err != nil {
		s.logger.Warn("dashboard cache set failed", zap.Error(err))
	}
	return &summary, false, nil
}

// Start subscribes to the store event bus and invalidates the cached
// summary after every mutation, so subscribers re-reading after a change
// event always see fresh counters.
func (s *DashboardService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelWatch != nil {
		return
	}

	ch, cancel := s.events.Subscribe()
	s.cancelWatch = cancel
	s.watchDone = make(chan struct{})

	go func() {
		defer close(s.watchDone)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
					s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop unsubscribes from the event bus.
func (s *DashboardService) Stop() {
	s.mu.Lock()
	cancel := s.cancelWatch
	done := s.watchDone
	s.cancelWatch = nil
	s.watchDone = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
