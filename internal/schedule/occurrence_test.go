package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func sampleSchedule() *models.WeeklySchedule {
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
				Period: "2nd",
				Time:   "10:00~10:50",
				Classes: map[models.Weekday]*models.Class{
					models.Monday:   {Name: "Databases", Room: "B102", Professor: "Prof. Park"},
					models.Thursday: {Name: "Networks", Room: "C201", Professor: "Prof. Lee"},
				},
			},
		},
	}
}

func TestParseStartTime(t *testing.T) {
	hour, minute, err := ParseStartTime("9:00~9:50")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 0, minute)

	hour, minute, err = ParseStartTime("13:30~14:20")
	require.NoError(t, err)
	assert.Equal(t, 13, hour)
	assert.Equal(t, 30, minute)

	// Bare start time without a range is accepted.
	hour, minute, err = ParseStartTime("08:05")
	require.NoError(t, err)
	assert.Equal(t, 8, hour)
	assert.Equal(t, 5, minute)
}

func TestParseStartTimeMalformed(t *testing.T) {
	for _, raw := range []string{"", "nine o'clock", "25:00~26:00", "9:61~10:00", "9~10"} {
		_, _, err := ParseStartTime(raw)
		assert.Error(t, err, "expected error for %q", raw)
	}
}

func TestNextOccurrenceStrictlyFutureAndOnWeekday(t *testing.T) {
	// 2024-04-10 is a Wednesday.
	now := mustTime(t, "2024-04-10 12:00")

	days := map[models.Weekday]time.Weekday{
		models.Monday:    time.Monday,
		models.Tuesday:   time.Tuesday,
		models.Wednesday: time.Wednesday,
		models.Thursday:  time.Thursday,
		models.Friday:    time.Friday,
	}
	times := []string{"9:00~9:50", "12:00~12:50", "23:59~00:30"}

	for day, want := range days {
		for _, slot := range times {
			got, err := NextOccurrence(day, slot, now)
			require.NoError(t, err)
			assert.True(t, got.After(now), "%s %s must be strictly future, got %s", day, slot, got)
			assert.Equal(t, want, got.Weekday())
			assert.Less(t, got.Sub(now), 7*24*time.Hour+time.Nanosecond)
		}
	}
}

func TestNextOccurrenceSameDayLater(t *testing.T) {
	// Monday morning before class: occurrence is later the same day.
	now := mustTime(t, "2024-04-08 08:30") // Monday
	got, err := NextOccurrence(models.Monday, "9:00~9:50", now)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2024-04-08 09:00"), got)
}

func TestNextOccurrenceAlreadyStartedRollsOver(t *testing.T) {
	// Monday 09:05, class started 09:00: next occurrence is next Monday.
	now := mustTime(t, "2024-04-08 09:05")
	got, err := NextOccurrence(models.Monday, "9:00~9:50", now)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2024-04-15 09:00"), got)
}

func TestNextOccurrenceEqualTimeCountsAsPast(t *testing.T) {
	now := mustTime(t, "2024-04-08 09:00")
	got, err := NextOccurrence(models.Monday, "9:00~9:50", now)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2024-04-15 09:00"), got, "exact start time rolls over a full week")
}

func TestNextOccurrenceUnknownWeekday(t *testing.T) {
	_, err := NextOccurrence(models.Weekday("sat"), "9:00~9:50", time.Now())
	assert.Error(t, err)
}

func TestBuildInstantsDerivesBothKinds(t *testing.T) {
	now := mustTime(t, "2024-04-08 07:00") // Monday
	instants, err := BuildInstants(sampleSchedule(), now, 10*time.Minute)
	require.NoError(t, err)

	// 3 classes, two instants each.
	require.Len(t, instants, 6)

	byID := make(map[string]models.Instant, len(instants))
	for _, in := range instants {
		byID[in.ID] = in
	}

	reminder, ok := byID["mon-1st-class-reminder"]
	require.True(t, ok)
	attendance, ok := byID["mon-1st-attendance-check"]
	require.True(t, ok)

	assert.Equal(t, mustTime(t, "2024-04-08 09:00"), attendance.At)
	assert.Equal(t, mustTime(t, "2024-04-08 08:50"), reminder.At)
	assert.Equal(t, attendance.At.Add(-10*time.Minute), reminder.At)

	assert.Contains(t, reminder.Payload.Title, "Algorithms")
	assert.Contains(t, attendance.Payload.Title, "Algorithms")
	assert.Equal(t, models.KindClassReminder, reminder.Kind)
	assert.Equal(t, models.KindAttendanceCheck, attendance.Kind)
}

func TestFilterFutureBoundary(t *testing.T) {
	now := mustTime(t, "2024-04-08 09:00")
	instants := []models.Instant{
		{ID: "past", At: now.Add(-time.Minute)},
		{ID: "exact", At: now},
		{ID: "future", At: now.Add(time.Minute)},
	}

	kept := FilterFuture(instants, now)
	require.Len(t, kept, 1)
	assert.Equal(t, "future", kept[0].ID, "instants at or before now are excluded")
}

func TestUpcomingSortedWithinHorizon(t *testing.T) {
	now := mustTime(t, "2024-04-08 07:00") // Monday
	instants, err := Upcoming(sampleSchedule(), now, 10*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	// Monday has two classes -> four instants today; Thursday is out of
	// horizon.
	require.Len(t, instants, 4)
	for i := 1; i < len(instants); i++ {
		assert.False(t, instants[i].At.Before(instants[i-1].At), "instants must be sorted soonest first")
	}
	for _, in := range instants {
		assert.Equal(t, models.Monday, in.Day)
	}
}
