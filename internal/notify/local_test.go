package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

type stubDeliverer struct {
	mu        sync.Mutex
	delivered bool
	delivers  []models.NotificationPayload
	simulated []models.NotificationPayload
}

func (d *stubDeliverer) Deliver(_ context.Context, payload models.NotificationPayload) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivers = append(d.delivers, payload)
	return d.delivered
}

func (d *stubDeliverer) Simulate(_ context.Context, payload models.NotificationPayload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.simulated = append(d.simulated, payload)
}

func (d *stubDeliverer) Status() models.DeliveryStatus { return models.DeliveryStatus{} }

func (d *stubDeliverer) counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivers), len(d.simulated)
}

func weeklyFixture() *models.WeeklySchedule {
	return &models.WeeklySchedule{
		Slots: []models.TimeSlot{
			{
				Period: "1st",
				Time:   "9:00~9:50",
				Classes: map[models.Weekday]*models.Class{
					models.Monday: {Name: "Algorithms"},
					models.Friday: {Name: "Compilers"},
				},
			},
		},
	}
}

func TestScheduleAllArmsOneTimerPerInstant(t *testing.T) {
	s := NewLocalScheduler(&stubDeliverer{}, 10*time.Minute, nil)
	defer s.CancelAll()

	// Far in the future so nothing fires during the test.
	armed, err := s.ScheduleAll(weeklyFixture(), time.Now())
	require.NoError(t, err)

	// 2 classes, reminder + attendance each.
	assert.Equal(t, 4, armed)
	assert.Equal(t, 4, s.Active())
}

func TestScheduleAllReplacesInsteadOfMerging(t *testing.T) {
	s := NewLocalScheduler(&stubDeliverer{}, 10*time.Minute, nil)
	defer s.CancelAll()

	_, err := s.ScheduleAll(weeklyFixture(), time.Now())
	require.NoError(t, err)
	_, err = s.ScheduleAll(weeklyFixture(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 4, s.Active(), "re-scheduling must not accumulate duplicate timers")
}

func TestCancelAllIsIdempotent(t *testing.T) {
	s := NewLocalScheduler(&stubDeliverer{}, 10*time.Minute, nil)

	_, err := s.ScheduleAll(weeklyFixture(), time.Now())
	require.NoError(t, err)

	s.CancelAll()
	assert.Zero(t, s.Active())
	s.CancelAll()
	assert.Zero(t, s.Active())
}

func TestFireDeliversAndRemovesTimer(t *testing.T) {
	deliverer := &stubDeliverer{delivered: true}
	s := NewLocalScheduler(deliverer, 10*time.Minute, nil)

	in := models.Instant{
		ID:      "mon-1st-class-reminder",
		Kind:    models.KindClassReminder,
		Payload: models.NotificationPayload{Title: "reminder"},
	}
	s.timers[in.ID] = time.AfterFunc(time.Hour, func() {})

	s.fire(in)

	delivers, simulated := deliverer.counts()
	assert.Equal(t, 1, delivers)
	assert.Zero(t, simulated, "no fallback when rich delivery succeeds")
	assert.Zero(t, s.Active(), "fired instant leaves the registry")
}

func TestFireFallsBackToSimulate(t *testing.T) {
	deliverer := &stubDeliverer{delivered: false}
	s := NewLocalScheduler(deliverer, 10*time.Minute, nil)

	s.fire(models.Instant{
		ID:      "mon-1st-attendance-check",
		Kind:    models.KindAttendanceCheck,
		Payload: models.NotificationPayload{Title: "attendance"},
	})

	delivers, simulated := deliverer.counts()
	assert.Equal(t, 1, delivers)
	assert.Equal(t, 1, simulated, "failed rich delivery degrades to a simulated one")
}
