package timetable

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/internal/schedule"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
)

// Load reads the weekly schedule definition from a JSON file and validates
// it. A malformed definition is a fatal configuration error; callers are
// expected to abort startup rather than schedule garbage.
func Load(path string) (*models.WeeklySchedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadTimetable.Code, appErrors.ErrBadTimetable.Status, fmt.Sprintf("read timetable %s", path))
	}

	var sched models.WeeklySchedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadTimetable.Code, appErrors.ErrBadTimetable.Status, fmt.Sprintf("parse timetable %s", path))
	}

	if err := Validate(&sched); err != nil {
		return nil, err
	}

	return &sched, nil
}

// Validate checks the invariants of a weekly schedule definition: at least
// one slot, distinct period identifiers, a parseable start time per slot, and
// only known weekday keys.
func Validate(sched *models.WeeklySchedule) error {
	if sched == nil || len(sched.Slots) == 0 {
		return appErrors.Clone(appErrors.ErrBadTimetable, "timetable has no slots")
	}

	known := make(map[models.Weekday]struct{}, len(models.SchoolDays))
	for _, day := range models.SchoolDays {
		known[day] = struct{}{}
	}

	periods := make(map[string]struct{}, len(sched.Slots))
	for i, slot := range sched.Slots {
		if slot.Period == "" {
			return appErrors.Clone(appErrors.ErrBadTimetable, fmt.Sprintf("slot %d has no period", i))
		}
		if _, dup := periods[slot.Period]; dup {
			return appErrors.Clone(appErrors.ErrBadTimetable, fmt.Sprintf("duplicate period %q", slot.Period))
		}
		periods[slot.Period] = struct{}{}

		if _, _, err := schedule.ParseStartTime(slot.Time); err != nil {
			return appErrors.Wrap(err, appErrors.ErrBadTimetable.Code, appErrors.ErrBadTimetable.Status, fmt.Sprintf("slot %q has invalid time %q", slot.Period, slot.Time))
		}

		for day := range slot.Classes {
			if _, ok := known[day]; !ok {
				return appErrors.Clone(appErrors.ErrBadTimetable, fmt.Sprintf("slot %q has unknown weekday %q", slot.Period, day))
			}
		}
	}

	return nil
}
