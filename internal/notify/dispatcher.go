package notify

import (
	"context"

	"go.uber.org/zap"
)

// Payload is the content handed to an external notification dispatcher.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Dispatcher delivers an immediate device notification. Delivery is
// best-effort: callers log and swallow errors, a failed dispatch never
// affects store state.
type Dispatcher interface {
	ScheduleImmediate(ctx context.Context, p Payload) error
}

// LogDispatcher is the default dispatcher. It only logs the payload; real
// deployments plug in a push gateway behind the same interface.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher builds a dispatcher that writes payloads to the log.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

// ScheduleImmediate logs the notification payload.
func (d *LogDispatcher) ScheduleImmediate(_ context.Context, p Payload) error {
	d.logger.Info("local notification",
		zap.String("title", p.Title),
		zap.String("body", p.Body),
		zap.Any("data", p.Data),
	)
	return nil
}
