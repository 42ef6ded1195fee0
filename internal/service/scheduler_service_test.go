package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

type fakeNotificationRepo struct {
	replaceCalls int
	lastReplaced []models.ScheduledNotification
	due          []models.ScheduledNotification
	marked       map[string]time.Time
	unsentCount  int
	replaceErr   error
	listDueErr   error
}

func (f *fakeNotificationRepo) Replace(_ context.Context, records []models.ScheduledNotification) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceCalls++
	f.lastReplaced = append([]models.ScheduledNotification(nil), records...)
	return nil
}

func (f *fakeNotificationRepo) ListDue(_ context.Context, _ time.Time) ([]models.ScheduledNotification, error) {
	if f.listDueErr != nil {
		return nil, f.listDueErr
	}
	remaining := make([]models.ScheduledNotification, 0, len(f.due))
	for _, record := range f.due {
		if _, sent := f.marked[record.ID]; !sent {
			remaining = append(remaining, record)
		}
	}
	return remaining, nil
}

func (f *fakeNotificationRepo) ListUnsent(_ context.Context) ([]models.ScheduledNotification, error) {
	return f.lastReplaced, nil
}

func (f *fakeNotificationRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	if f.marked == nil {
		f.marked = make(map[string]time.Time)
	}
	f.marked[id] = at
	return nil
}

func (f *fakeNotificationRepo) CountUnsent(_ context.Context) (int, error) {
	return f.unsentCount, nil
}

func scheduleFixture() *models.WeeklySchedule {
	return &models.WeeklySchedule{
		Slots: []models.TimeSlot{
			{
				Period: "1st",
				Time:   "9:00~9:50",
				Classes: map[models.Weekday]*models.Class{
					models.Monday: {Name: "Algorithms", Room: "B101", Professor: "Prof. Kim"},
				},
			},
			{
				Period: "3rd",
				Time:   "11:00~11:50",
				Classes: map[models.Weekday]*models.Class{
					models.Friday: {Name: "Compilers", Room: "C305", Professor: "Prof. Lee"},
				},
			},
		},
	}
}

func TestSchedulerServiceReschedule(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewSchedulerService(scheduleFixture(), repo, 10*time.Minute, nil)

	// Monday 07:00, everything this week still ahead.
	now := time.Date(2024, 4, 8, 7, 0, 0, 0, time.Local)

	count, err := svc.Reschedule(context.Background(), now)
	require.NoError(t, err)

	// 2 classes, reminder + attendance each.
	assert.Equal(t, 4, count)
	require.Len(t, repo.lastReplaced, 4)

	for _, record := range repo.lastReplaced {
		assert.True(t, record.ScheduledFor.After(now), "only future records are persisted")
		assert.NotEmpty(t, record.Title)
		assert.NotEmpty(t, record.ClassPeriod)
	}
}

func TestSchedulerServiceRescheduleSupersedes(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewSchedulerService(scheduleFixture(), repo, 10*time.Minute, nil)

	now := time.Date(2024, 4, 8, 7, 0, 0, 0, time.Local)
	_, err := svc.Reschedule(context.Background(), now)
	require.NoError(t, err)
	first := repo.lastReplaced

	_, err = svc.Reschedule(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	second := repo.lastReplaced

	assert.Equal(t, 2, repo.replaceCalls)
	require.Len(t, second, len(first), "a repeated run replaces, never accumulates")

	type key struct {
		kind   models.NotificationKind
		period string
		at     time.Time
	}
	set := func(records []models.ScheduledNotification) map[key]struct{} {
		out := make(map[key]struct{}, len(records))
		for _, r := range records {
			out[key{r.Kind, r.ClassPeriod, r.ScheduledFor}] = struct{}{}
		}
		return out
	}
	assert.Equal(t, set(first), set(second))
}

func TestSchedulerServiceRescheduleSkipsStartedClasses(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewSchedulerService(scheduleFixture(), repo, 10*time.Minute, nil)

	// Monday 09:00 exactly: the 1st period rolls over a week, so all four
	// records still land, but none of them in the past.
	now := time.Date(2024, 4, 8, 9, 0, 0, 0, time.Local)

	count, err := svc.Reschedule(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	for _, record := range repo.lastReplaced {
		assert.True(t, record.ScheduledFor.After(now))
	}
}

func TestSchedulerServiceRescheduleRepositoryFailure(t *testing.T) {
	repo := &fakeNotificationRepo{replaceErr: errors.New("db down")}
	svc := NewSchedulerService(scheduleFixture(), repo, 10*time.Minute, nil)

	_, err := svc.Reschedule(context.Background(), time.Now())
	require.Error(t, err)
}

func TestSchedulerServiceUpcoming(t *testing.T) {
	svc := NewSchedulerService(scheduleFixture(), &fakeNotificationRepo{}, 10*time.Minute, nil)

	now := time.Date(2024, 4, 8, 7, 0, 0, 0, time.Local) // Monday
	instants, err := svc.Upcoming(context.Background(), now, 24*time.Hour)
	require.NoError(t, err)

	// Only Monday's class falls inside the horizon.
	require.Len(t, instants, 2)
	assert.True(t, instants[0].At.Before(instants[1].At))
	assert.Equal(t, models.KindClassReminder, instants[0].Kind)
	assert.Equal(t, models.KindAttendanceCheck, instants[1].Kind)
}

func TestSchedulerServicePendingCount(t *testing.T) {
	svc := NewSchedulerService(scheduleFixture(), &fakeNotificationRepo{unsentCount: 9}, 0, nil)

	count, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, count)
}
