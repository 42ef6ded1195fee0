package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/internal/schedule"
)

const deliverTimeout = 30 * time.Second

// LocalScheduler arms one single-shot timer per eligible notification
// instant. It owns the timer registry exclusively: ScheduleAll replaces the
// whole registry, never merges, so at most one timer exists per instant
// identifier. Pending timers are lost on process restart; the durable
// scheduler is the backstop for anything that must survive.
type LocalScheduler struct {
	deliverer Deliverer
	lead      time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewLocalScheduler constructs the timer scheduler.
func NewLocalScheduler(deliverer Deliverer, lead time.Duration, logger *zap.Logger) *LocalScheduler {
	if lead <= 0 {
		lead = schedule.DefaultReminderLead
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalScheduler{
		deliverer: deliverer,
		lead:      lead,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
	}
}

// ScheduleAll cancels every previously armed timer, recomputes all
// occurrences against now, and arms one timer per future instant. It returns
// the number of timers armed.
func (s *LocalScheduler) ScheduleAll(sched *models.WeeklySchedule, now time.Time) (int, error) {
	instants, err := schedule.BuildInstants(sched, now, s.lead)
	if err != nil {
		return 0, err
	}
	eligible := schedule.FilterFuture(instants, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()

	for _, in := range eligible {
		in := in
		delay := in.At.Sub(now)
		s.timers[in.ID] = time.AfterFunc(delay, func() { s.fire(in) })
	}

	s.logger.Info("notification timers armed",
		zap.Int("armed", len(eligible)),
		zap.Int("skipped_past", len(instants)-len(eligible)))

	return len(eligible), nil
}

// CancelAll stops every armed timer and clears the registry. Idempotent.
func (s *LocalScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
}

func (s *LocalScheduler) cancelAllLocked() {
	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[string]*time.Timer)
}

// Active returns the number of currently armed timers.
func (s *LocalScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// fire runs on the timer goroutine. Firing is one-shot: the instant removes
// itself from the registry before delivery. A fire racing a CancelAll is
// benign; an in-flight delivery is allowed to complete.
func (s *LocalScheduler) fire(in models.Instant) {
	s.mu.Lock()
	delete(s.timers, in.ID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if delivered := s.deliverer.Deliver(ctx, in.Payload); !delivered {
		s.logger.Debug("rich delivery unavailable, simulating",
			zap.String("instant", in.ID),
			zap.String("kind", string(in.Kind)))
		s.deliverer.Simulate(ctx, in.Payload)
	}
}
