package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/internal/notify"
)

type sweepRoster interface {
	Students() []models.Student
	MutateStudents(fn func(*models.Student))
}

// SweepService periodically scans the roster for overdue payments, raising
// one in-app notification per overdue student and requesting an immediate
// device notification. A new alert is only raised once the prior one has
// been read or the payment settled, so a driver ignoring a notification is
// not re-alerted every tick.
type SweepService struct {
	roster        sweepRoster
	notifications *NotificationService
	dispatcher    notify.Dispatcher
	events        *EventBus
	metrics       *MetricsService
	logger        *zap.Logger
	interval      time.Duration

	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewSweepService constructs a SweepService.
func NewSweepService(
	roster sweepRoster,
	notifications *NotificationService,
	dispatcher notify.Dispatcher,
	events *EventBus,
	metrics *MetricsService,
	logger *zap.Logger,
	interval time.Duration,
) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepService{
		roster:        roster,
		notifications: notifications,
		dispatcher:    dispatcher,
		events:        events,
		metrics:       metrics,
		logger:        logger,
		interval:      interval,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Start runs one sweep immediately and then on every interval tick until
// Stop or context cancellation. Safe to call once.
func (s *SweepService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.RunOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
	s.logger.Info("overdue payment sweep started", zap.Duration("interval", s.interval))
}

// Stop cancels the sweep loop and waits for it to exit.
func (s *SweepService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("overdue payment sweep stopped")
}

// RunOnce executes a single sweep pass. The overdue flag is recomputed from
// the due date first; a due date passing between ticks must flip the flag
// without any data entry happening.
func (s *SweepService) RunOnce(ctx context.Context) {
	now := s.now()

	changed := 0
	s.roster.MutateStudents(func(st *models.Student) {
		overdue := !st.Payment.IsPaid && !now.Before(st.Payment.DueDate)
		if st.Payment.IsOverdue != overdue {
			changed++
		}
		st.Payment.IsOverdue = overdue
	})
	if changed > 0 && s.events != nil {
		// Subscribers (the dashboard cache in particular) must see flag
		// changes the recompute made without any data entry happening.
		s.events.Publish(StoreEvent{Type: EventPaymentOverdueSwept})
	}

	alerts := 0
	for _, st := range s.roster.Students() {
		if !st.Payment.IsOverdue || st.Payment.IsPaid {
			continue
		}
		if s.notifications.HasUnread(st.ID, models.NotificationPaymentOverdue) {
			continue
		}

		message := fmt.Sprintf("Payment for %s is overdue. Amount: $%s", st.Name, formatAmount(st.Payment.MonthlyAmount))
		s.notifications.AddItem(models.NotificationPaymentOverdue, "Payment Overdue", message, st.ID, st.Name)

		// Dispatch is fire-and-forget; a failed push never blocks the sweep.
		if err := s.dispatcher.ScheduleImmediate(ctx, notify.Payload{
			Title: "Payment Overdue",
			Body:  message,
			Data:  map[string]string{"student_id": st.ID, "type": string(models.NotificationPaymentOverdue)},
		}); err != nil {
			s.logger.Warn("notification dispatch failed",
				zap.String("student_id", st.ID),
				zap.Error(err))
		}
		alerts++
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(alerts)
	}
	if alerts > 0 {
		s.logger.Info("overdue payment sweep raised alerts", zap.Int("alerts", alerts))
	}
}
