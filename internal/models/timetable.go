package models

// Weekday identifies a school day in the weekly timetable.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
)

// SchoolDays lists the weekdays carrying classes, in display order.
var SchoolDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// DayLabels maps weekday keys to their display names.
var DayLabels = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

// Class describes a single taught class. It has no identity of its own; it is
// owned by the TimeSlot that contains it.
type Class struct {
	Name      string `json:"name"`
	Room      string `json:"room"`
	Professor string `json:"professor"`
	Code      string `json:"code,omitempty"`
}

// TimeSlot is one row of the weekly grid: a period with its time range and the
// class taught on each weekday, if any. Time is "HH:MM~HH:MM"; only the start
// component drives scheduling, the end is display-only.
type TimeSlot struct {
	Period  string             `json:"period"`
	Time    string             `json:"time"`
	Classes map[Weekday]*Class `json:"classes"`
}

// WeeklySchedule is the immutable weekly timetable loaded at startup.
type WeeklySchedule struct {
	Slots []TimeSlot `json:"schedule"`
}

// ClassCount returns the number of (slot, weekday) cells holding a class.
func (s WeeklySchedule) ClassCount() int {
	count := 0
	for _, slot := range s.Slots {
		for _, day := range SchoolDays {
			if slot.Classes[day] != nil {
				count++
			}
		}
	}
	return count
}
