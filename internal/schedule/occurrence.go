// Package schedule implements the recurring-event engine: it expands the
// static weekly timetable into concrete future occurrences and derives the
// notification instants (reminder and attendance check) from each one.
//
// All datetime arithmetic is local wall clock. The deployment serves a single
// institution in a single timezone, so no timezone conversion is performed.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

// DefaultReminderLead is how long before class start the reminder fires.
const DefaultReminderLead = 10 * time.Minute

// weekdayIndex maps weekday keys onto time.Weekday numbering (Sunday = 0).
var weekdayIndex = map[models.Weekday]int{
	models.Monday:    1,
	models.Tuesday:   2,
	models.Wednesday: 3,
	models.Thursday:  4,
	models.Friday:    5,
}

// ParseStartTime extracts hour and minute from a "HH:MM~HH:MM" range. Only
// the start component matters; the end time is display-only.
func ParseStartTime(timeRange string) (int, int, error) {
	start := timeRange
	if idx := strings.Index(timeRange, "~"); idx >= 0 {
		start = timeRange[:idx]
	}

	parts := strings.Split(strings.TrimSpace(start), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q: want HH:MM", timeRange)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed hour in %q: %w", timeRange, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed minute in %q: %w", timeRange, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", timeRange)
	}

	return hour, minute, nil
}

// NextOccurrence returns the next concrete start datetime of the given weekly
// slot, strictly after now. A slot whose time today has already arrived (or
// is exactly now) rolls over to next week: equal-time counts as past.
func NextOccurrence(day models.Weekday, timeRange string, now time.Time) (time.Time, error) {
	target, ok := weekdayIndex[day]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown weekday %q", day)
	}

	hour, minute, err := ParseStartTime(timeRange)
	if err != nil {
		return time.Time{}, err
	}

	daysUntil := target - int(now.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	candidate = candidate.AddDate(0, 0, daysUntil)

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate, nil
}

// BuildInstants expands the weekly schedule into the full set of notification
// instants relative to now: for every slot and weekday holding a class, one
// reminder instant (start minus lead) and one attendance-check instant
// (exactly at start). The result is unfiltered; apply FilterFuture before
// arming timers or persisting.
func BuildInstants(sched *models.WeeklySchedule, now time.Time, lead time.Duration) ([]models.Instant, error) {
	if lead <= 0 {
		lead = DefaultReminderLead
	}

	var instants []models.Instant
	for _, slot := range sched.Slots {
		for _, day := range models.SchoolDays {
			class := slot.Classes[day]
			if class == nil {
				continue
			}

			start, err := NextOccurrence(day, slot.Time, now)
			if err != nil {
				return nil, err
			}

			instants = append(instants,
				models.Instant{
					ID:        models.InstantID(day, slot.Period, models.KindClassReminder),
					Kind:      models.KindClassReminder,
					Day:       day,
					Period:    slot.Period,
					At:        start.Add(-lead),
					Payload:   ReminderPayload(class, slot, day),
					ClassName: class.Name,
					Room:      class.Room,
					Professor: class.Professor,
				},
				models.Instant{
					ID:        models.InstantID(day, slot.Period, models.KindAttendanceCheck),
					Kind:      models.KindAttendanceCheck,
					Day:       day,
					Period:    slot.Period,
					At:        start,
					Payload:   AttendancePayload(class, slot, day),
					ClassName: class.Name,
					Room:      class.Room,
					Professor: class.Professor,
				},
			)
		}
	}

	return instants, nil
}

// FilterFuture keeps only instants strictly after now. It must be re-applied
// on every scheduling pass since now keeps advancing.
func FilterFuture(instants []models.Instant, now time.Time) []models.Instant {
	future := make([]models.Instant, 0, len(instants))
	for _, in := range instants {
		if in.At.After(now) {
			future = append(future, in)
		}
	}
	return future
}

// Upcoming returns the future instants due within the horizon, soonest first.
func Upcoming(sched *models.WeeklySchedule, now time.Time, lead, horizon time.Duration) ([]models.Instant, error) {
	instants, err := BuildInstants(sched, now, lead)
	if err != nil {
		return nil, err
	}

	limit := now.Add(horizon)
	within := make([]models.Instant, 0, len(instants))
	for _, in := range FilterFuture(instants, now) {
		if !in.At.After(limit) {
			within = append(within, in)
		}
	}

	sort.Slice(within, func(i, j int) bool { return within[i].At.Before(within[j].At) })
	return within, nil
}
