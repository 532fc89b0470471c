// Package model holds the timetable records owned by the store.
package model

import (
	"time"

	"millbook/internal/timeline"
)

// Interval is a half-open [Start, End) range of minutes on a single day.
type Interval struct {
	Day   timeline.Day
	Start int
	End   int
}

// Overlaps reports whether two intervals on the same day share at least
// one minute. Touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Day == other.Day && iv.Start < other.End && other.Start < iv.End
}

// Booking is a customer reservation. Duration derives from the bag count;
// records are never mutated in place, only created and deleted.
type Booking struct {
	ID        int64        `json:"id"`
	Day       timeline.Day `json:"day"`
	Name      string       `json:"name"`
	Bags      int          `json:"bags"`
	StartTime int          `json:"start_time"`
	EndTime   int          `json:"end_time"`
}

// Interval returns the booked range.
func (b Booking) Interval() Interval {
	return Interval{Day: b.Day, Start: b.StartTime, End: b.EndTime}
}

// Closure is a range blocked off by the administrator.
type Closure struct {
	ID        int64        `json:"id"`
	Day       timeline.Day `json:"day"`
	StartTime int          `json:"start_time"`
	EndTime   int          `json:"end_time"`
	Reason    string       `json:"reason"`
	CreatedAt time.Time    `json:"created_at"`
}

// Interval returns the closed range.
func (c Closure) Interval() Interval {
	return Interval{Day: c.Day, Start: c.StartTime, End: c.EndTime}
}
