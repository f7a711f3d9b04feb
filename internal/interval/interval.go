// Package interval computes how much of a booking falls inside one calendar
// day.
package interval

import (
	"math"
	"time"

	"github.com/Veraticus/studio-ledger/internal/model"
)

// Span is the day-scoped duration of a booking.
type Span struct {
	// HoursInDay is the overlap with the processing day, rounded to a whole
	// hour (half to even).
	HoursInDay float64
	// FullDurationHours is the whole booking regardless of the day.
	FullDurationHours float64
	// Explicit is false when no clock range was found and the declared
	// hour count was used instead.
	Explicit bool
}

// Arithmetic runs on naive wall-clock times; a fixed zone keeps DST out of it.
var wallClock = time.UTC

// Compute places the booking on its own date (or on day when the text carries
// no date), treats end <= start as crossing midnight, and intersects the
// result with [day 00:00, day+1 00:00).
func Compute(fields model.ExtractedFields, day time.Time) Span {
	if !fields.HasTimeRange() {
		declared := 0
		if fields.DeclaredHours != nil {
			declared = *fields.DeclaredHours
		}
		return Span{
			HoursInDay:        float64(declared),
			FullDurationHours: float64(declared),
		}
	}

	anchor := day
	if fields.BookingDate != nil {
		anchor = *fields.BookingDate
	}
	start, end := Bounds(*fields.Start, *fields.End, anchor)

	return Span{
		HoursInDay:        math.RoundToEven(Overlap(start, end, day).Hours()),
		FullDurationHours: end.Sub(start).Hours(),
		Explicit:          true,
	}
}

// Bounds anchors a clock range on date. An end that is not after the start
// belongs to the next day, so equal clocks make a 24-hour booking.
func Bounds(startClock, endClock model.Clock, date time.Time) (start, end time.Time) {
	start = startClock.On(date, wallClock)
	end = endClock.On(date, wallClock)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// Window returns the half-open interval covering day.
func Window(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, wallClock)
	return start, start.AddDate(0, 0, 1)
}

// Overlap is the length of [start, end) inside day, never negative.
func Overlap(start, end, day time.Time) time.Duration {
	winStart, winEnd := Window(day)
	if start.Before(winStart) {
		start = winStart
	}
	if end.After(winEnd) {
		end = winEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
