package models

import "time"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Intervals that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Blocks reports whether a date with this status takes up time on the calendar.
func (s DateStatus) Blocks() bool {
	return s != DateCanceled
}

func (s DateStatus) Valid() bool {
	switch s {
	case DateAvailable, DateBooked, DateCanceled, DateOther:
		return true
	}
	return false
}

func (s LessonStatus) Terminal() bool {
	return s == LessonCompleted || s == LessonCanceled
}

// DurationMinutes rounds the slot length to whole minutes.
func (d Date) DurationMinutes() int {
	return int(d.EndTime.Sub(d.StartTime).Round(time.Minute) / time.Minute)
}
