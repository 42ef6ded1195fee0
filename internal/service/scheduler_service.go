package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/internal/schedule"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
)

type notificationRepository interface {
	Replace(ctx context.Context, records []models.ScheduledNotification) error
	ListDue(ctx context.Context, now time.Time) ([]models.ScheduledNotification, error)
	ListUnsent(ctx context.Context) ([]models.ScheduledNotification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	CountUnsent(ctx context.Context) (int, error)
}

// SchedulerService is the durable scheduler: it recomputes every future
// occurrence on demand and replaces the persisted unsent plan wholesale, so
// repeated invocations supersede rather than duplicate prior schedules.
type SchedulerService struct {
	schedule *models.WeeklySchedule
	repo     notificationRepository
	lead     time.Duration
	logger   *zap.Logger
}

// NewSchedulerService instantiates SchedulerService.
func NewSchedulerService(sched *models.WeeklySchedule, repo notificationRepository, lead time.Duration, logger *zap.Logger) *SchedulerService {
	if lead <= 0 {
		lead = schedule.DefaultReminderLead
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{schedule: sched, repo: repo, lead: lead, logger: logger}
}

// Reschedule recomputes all future instants against now and persists them as
// unsent durable records, discarding any stale unsent plan first. Sent
// records are never touched. Idempotent: two runs with the same now produce
// the same persisted set aside from row identity. Returns the number of
// records scheduled.
func (s *SchedulerService) Reschedule(ctx context.Context, now time.Time) (int, error) {
	instants, err := schedule.BuildInstants(s.schedule, now, s.lead)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrBadTimetable.Code, appErrors.ErrBadTimetable.Status, "expand timetable occurrences")
	}
	eligible := schedule.FilterFuture(instants, now)

	records := make([]models.ScheduledNotification, 0, len(eligible))
	for _, in := range eligible {
		records = append(records, models.ScheduledNotification{
			Kind:         in.Kind,
			Title:        in.Payload.Title,
			Body:         in.Payload.Body,
			ScheduledFor: in.At,
			ClassPeriod:  in.Period,
			ClassName:    in.ClassName,
			ClassRoom:    in.Room,
			Professor:    in.Professor,
		})
	}

	if err := s.repo.Replace(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist scheduled notifications")
	}

	s.logger.Info("durable notifications rescheduled",
		zap.Int("scheduled", len(records)),
		zap.Time("now", now))

	return len(records), nil
}

// Upcoming returns the future notification instants within the horizon,
// soonest first. Computed fresh from the timetable, not from persisted state.
func (s *SchedulerService) Upcoming(ctx context.Context, now time.Time, horizon time.Duration) ([]models.Instant, error) {
	if horizon <= 0 {
		horizon = 24 * time.Hour
	}
	instants, err := schedule.Upcoming(s.schedule, now, s.lead, horizon)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadTimetable.Code, appErrors.ErrBadTimetable.Status, "expand timetable occurrences")
	}
	return instants, nil
}

// Pending returns the durable records still awaiting dispatch, soonest first.
func (s *SchedulerService) Pending(ctx context.Context) ([]models.ScheduledNotification, error) {
	records, err := s.repo.ListUnsent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list pending notifications")
	}
	return records, nil
}

// PendingCount reports how many durable records await dispatch.
func (s *SchedulerService) PendingCount(ctx context.Context) (int, error) {
	count, err := s.repo.CountUnsent(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count pending notifications")
	}
	return count, nil
}
