// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"
)

// BookingText is the raw multi-line text of one booking as supplied by the
// reservation tool.
type BookingText string

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// String renders the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant of c on the calendar day of date, in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// ExtractedFields holds the structured fields recovered from a BookingText.
// Optional fields are nil when absent.
type ExtractedFields struct {
	Start         *Clock
	End           *Clock
	DeclaredHours *int
	HintLine      *string
	BookingDate   *time.Time
	PrepaidAmount int
}

// HasTimeRange reports whether both ends of an explicit range were found.
func (f ExtractedFields) HasTimeRange() bool {
	return f.Start != nil && f.End != nil
}

// BookingRecord is the classified, day-scoped result of one booking.
type BookingRecord struct {
	Category          Category
	HoursInDay        float64
	FullDurationHours float64
	PrepaidAmount     int
}
