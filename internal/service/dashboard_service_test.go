package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
)

// memoryCacheRepo is a map-backed stand-in for the Redis repository.
type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

func dashboardRosterData() models.BusInfo {
	bus := testRoster()
	bus.Students[0].OnBus = true
	return bus
}

func TestDashboardSummaryCounters(t *testing.T) {
	roster := repository.NewRosterRepository(dashboardRosterData())
	notifStore := repository.NewNotificationRepository()
	notifStore.Insert(models.NotificationItem{ID: "a", Type: models.NotificationPaymentOverdue})
	notifStore.Insert(models.NotificationItem{ID: "b", Type: models.NotificationSystem, Read: true})

	cacheSvc := NewCacheService(nil, nil, time.Second, nil, false)
	svc := NewDashboardService(roster, notifStore, cacheSvc, NewEventBus(), nil, time.Second)
	svc.now = fixedNow

	summary, cacheHit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, "bus-001", summary.BusID)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 1, summary.OnBusCount)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.Equal(t, 1, summary.UnreadNotifications)
	assert.Equal(t, float64(300), summary.TotalMonthlyRevenue)
	assert.Equal(t, float64(150), summary.CollectedRevenue)
	assert.Equal(t, float64(150), summary.OutstandingRevenue)
	assert.Equal(t, fixedNow(), summary.GeneratedAt)
}

func TestDashboardSummaryCacheHit(t *testing.T) {
	roster := repository.NewRosterRepository(dashboardRosterData())
	notifStore := repository.NewNotificationRepository()

	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Second, nil, true)
	svc := NewDashboardService(roster, notifStore, cacheSvc, NewEventBus(), nil, time.Second)
	svc.now = fixedNow

	_, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	cached, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, cached.TotalStudents)
}

func TestDashboardInvalidatesOnStoreEvents(t *testing.T) {
	roster := repository.NewRosterRepository(dashboardRosterData())
	notifStore := repository.NewNotificationRepository()
	events := NewEventBus()

	repo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(repo, nil, time.Second, nil, true)
	svc := NewDashboardService(roster, notifStore, cacheSvc, events, nil, time.Second)
	svc.now = fixedNow

	svc.Start(context.Background())
	defer svc.Stop()

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)

	events.Publish(StoreEvent{Type: EventStudentToggled, StudentID: "1"})

	// Invalidation happens on the watcher goroutine.
	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.entries) == 0
	}, time.Second, 10*time.Millisecond)
}
