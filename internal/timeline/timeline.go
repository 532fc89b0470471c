// Package timeline defines the mill's daily operating window and the
// pure helpers used to discretize it into bookable slots.
package timeline

import "fmt"

// Operating window and discretization constants, in minutes since midnight.
const (
	OpenMinute  = 9 * 60  // 9:00 AM
	CloseMinute = 18 * 60 // 6:00 PM

	// SlotGranularity is the step between candidate start times.
	SlotGranularity = 15
	// MinutesPerBag is the processing time added per bag of laundry.
	MinutesPerBag = 15

	// MaxBags is the largest load the operating window can hold.
	MaxBags = (CloseMinute - OpenMinute) / MinutesPerBag
)

// Day is one of the seven weekday labels the timetable is keyed by.
type Day string

const (
	Monday    Day = "Mon"
	Tuesday   Day = "Tue"
	Wednesday Day = "Wed"
	Thursday  Day = "Thu"
	Friday    Day = "Fri"
	Saturday  Day = "Sat"
	Sunday    Day = "Sun"
)

var weekdays = [7]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Days returns the seven weekday labels in display order.
func Days() []Day {
	return weekdays[:]
}

// ParseDay validates a weekday label as received from a client.
func ParseDay(s string) (Day, error) {
	for _, d := range weekdays {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

// MinutesToLabel renders minutes since midnight as a 12-hour clock label,
// e.g. 540 -> "9:00 AM". Hour 0 displays as 12.
func MinutesToLabel(t int) string {
	hours := t / 60
	mins := t % 60
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	display := hours
	switch {
	case hours > 12:
		display = hours - 12
	case hours == 0:
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, mins, period)
}

// RangeLabel renders an interval as "9:00 AM - 9:30 AM".
func RangeLabel(start, end int) string {
	return MinutesToLabel(start) + " - " + MinutesToLabel(end)
}

// CandidateStarts returns every start time in the operating window, stepped
// by SlotGranularity, at which a slot of the given duration still ends by
// closing time. Returns nil for non-positive durations.
func CandidateStarts(duration int) []int {
	if duration <= 0 {
		return nil
	}
	var starts []int
	for t := OpenMinute; t < CloseMinute; t += SlotGranularity {
		if t+duration > CloseMinute {
			break
		}
		starts = append(starts, t)
	}
	return starts
}
