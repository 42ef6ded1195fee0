package timetable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhan-dev/timetable-notify/internal/models"
	appErrors "github.com/jwhan-dev/timetable-notify/pkg/errors"
)

func writeTimetable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timetable.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidTimetable(t *testing.T) {
	path := writeTimetable(t, `{
		"schedule": [
			{
				"period": "1st",
				"time": "9:00~9:50",
				"classes": {
					"mon": {"name": "Algorithms", "room": "B101", "professor": "Prof. Kim"},
					"tue": null
				}
			},
			{
				"period": "2nd",
				"time": "10:00~10:50",
				"classes": {
					"wed": {"name": "Databases", "room": "B102", "professor": "Prof. Park"}
				}
			}
		]
	}`)

	sched, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sched.Slots, 2)
	assert.Equal(t, 2, sched.ClassCount())
	assert.Equal(t, "Algorithms", sched.Slots[0].Classes[models.Monday].Name)
	assert.Nil(t, sched.Slots[0].Classes[models.Tuesday])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadTimetable.Code, appErrors.FromError(err).Code)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeTimetable(t, `{"schedule": [`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadTimetable.Code, appErrors.FromError(err).Code)
}

func TestLoadMalformedTimeIsFatal(t *testing.T) {
	path := writeTimetable(t, `{
		"schedule": [
			{"period": "1st", "time": "nine-ish", "classes": {"mon": {"name": "Algorithms"}}}
		]
	}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadTimetable.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "1st")
}

func TestValidateRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		sched *models.WeeklySchedule
	}{
		{"nil schedule", nil},
		{"no slots", &models.WeeklySchedule{}},
		{
			"empty period",
			&models.WeeklySchedule{Slots: []models.TimeSlot{{Period: "", Time: "9:00~9:50"}}},
		},
		{
			"duplicate period",
			&models.WeeklySchedule{Slots: []models.TimeSlot{
				{Period: "1st", Time: "9:00~9:50"},
				{Period: "1st", Time: "10:00~10:50"},
			}},
		},
		{
			"unknown weekday",
			&models.WeeklySchedule{Slots: []models.TimeSlot{
				{Period: "1st", Time: "9:00~9:50", Classes: map[models.Weekday]*models.Class{
					models.Weekday("sun"): {Name: "Brunch"},
				}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sched)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrBadTimetable.Code, appErrors.FromError(err).Code)
		})
	}
}
