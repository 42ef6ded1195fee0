package schedule

import (
	"fmt"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

const notificationIcon = "/icons/icon-192x192.png"

// ReminderPayload renders the ten-minutes-before notification for a class.
func ReminderPayload(class *models.Class, slot models.TimeSlot, day models.Weekday) models.NotificationPayload {
	return models.NotificationPayload{
		Title: fmt.Sprintf("🔔 Class reminder - %s", class.Name),
		Body: fmt.Sprintf("%s starts soon at %s.\nProfessor: %s\nRoom: %s",
			class.Name, slot.Time, class.Professor, class.Room),
		Icon: notificationIcon,
		Tag:  fmt.Sprintf("%s-%s", models.KindClassReminder, models.InstantID(day, slot.Period, models.KindClassReminder)),
		Data: payloadData(models.KindClassReminder, class, slot, day),
	}
}

// AttendancePayload renders the at-start notification for a class.
func AttendancePayload(class *models.Class, slot models.TimeSlot, day models.Weekday) models.NotificationPayload {
	return models.NotificationPayload{
		Title: fmt.Sprintf("📍 Attendance check - %s", class.Name),
		Body: fmt.Sprintf("%s has started!\nPlease confirm your attendance.\nRoom: %s",
			class.Name, class.Room),
		Icon: notificationIcon,
		Tag:  fmt.Sprintf("%s-%s", models.KindAttendanceCheck, models.InstantID(day, slot.Period, models.KindAttendanceCheck)),
		Data: payloadData(models.KindAttendanceCheck, class, slot, day),
	}
}

func payloadData(kind models.NotificationKind, class *models.Class, slot models.TimeSlot, day models.Weekday) map[string]interface{} {
	return map[string]interface{}{
		"type": string(kind),
		"classInfo": map[string]interface{}{
			"name":      class.Name,
			"room":      class.Room,
			"professor": class.Professor,
			"period":    slot.Period,
			"day":       models.DayLabels[day],
		},
	}
}
