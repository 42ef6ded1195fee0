package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

const (
	timetableCacheKey = "timetable:weekly"
	todayCacheKey     = "timetable:today:"
)

// TimetableService serves the static weekly schedule, optionally through the
// cache layer. The schedule itself is immutable after load.
type TimetableService struct {
	schedule *models.WeeklySchedule
	cache    *CacheService
	logger   *zap.Logger
}

// NewTimetableService constructs a timetable service around the loaded
// schedule.
func NewTimetableService(schedule *models.WeeklySchedule, cache *CacheService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{schedule: schedule, cache: cache, logger: logger}
}

// Weekly returns the full weekly schedule.
func (s *TimetableService) Weekly(ctx context.Context) *models.WeeklySchedule {
	if s.cache.Enabled() {
		var cached models.WeeklySchedule
		if hit, _ := s.cache.Get(ctx, timetableCacheKey, &cached); hit {
			return &cached
		}
		if err := s.cache.Set(ctx, timetableCacheKey, s.schedule, 0); err != nil {
			s.logger.Debug("timetable cache fill failed", zap.Error(err))
		}
	}
	return s.schedule
}

// DaySlot is one entry in a single-day view.
type DaySlot struct {
	Period string        `json:"period"`
	Time   string        `json:"time"`
	Class  *models.Class `json:"class"`
}

// Day returns the slots for one weekday, preserving period order. Empty cells
// are included so the client can render the full grid column.
func (s *TimetableService) Day(ctx context.Context, day models.Weekday) []DaySlot {
	if s.cache.Enabled() {
		var cached []DaySlot
		if hit, _ := s.cache.Get(ctx, todayCacheKey+string(day), &cached); hit {
			return cached
		}
	}

	slots := make([]DaySlot, 0, len(s.schedule.Slots))
	for _, slot := range s.schedule.Slots {
		slots = append(slots, DaySlot{
			Period: slot.Period,
			Time:   slot.Time,
			Class:  slot.Classes[day],
		})
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, todayCacheKey+string(day), slots, 0); err != nil {
			s.logger.Debug("day cache fill failed", zap.Error(err))
		}
	}
	return slots
}

// Today resolves now to a weekday and returns that day's slots. Weekends have
// no classes; ok reports whether now falls on a school day.
func (s *TimetableService) Today(ctx context.Context, now time.Time) ([]DaySlot, models.Weekday, bool) {
	var day models.Weekday
	switch now.Weekday() {
	case time.Monday:
		day = models.Monday
	case time.Tuesday:
		day = models.Tuesday
	case time.Wednesday:
		day = models.Wednesday
	case time.Thursday:
		day = models.Thursday
	case time.Friday:
		day = models.Friday
	default:
		return nil, "", false
	}
	return s.Day(ctx, day), day, true
}
