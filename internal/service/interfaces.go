// Package service defines the contracts between the engine and its sources
// and sinks.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/report"
)

// BookingSource yields the raw booking texts of one calendar day.
type BookingSource interface {
	Bookings(ctx context.Context, day time.Time) ([]model.BookingText, error)
}

// RegisterSource yields the register table of the month containing month.
// A missing month sheet is reported as common.ErrNotFound.
type RegisterSource interface {
	Table(ctx context.Context, month time.Time) ([][]string, error)
}

// CellWriter persists the summary cells of one day.
type CellWriter interface {
	WriteDay(ctx context.Context, day time.Time, cells []report.Cell) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// WithDefaults fills unset fields.
func (o RetryOptions) WithDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	return o
}

// DateRange represents a period with start and end days, both inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateRangeOf spans the given days, which must be sorted.
func DateRangeOf(days []time.Time) DateRange {
	if len(days) == 0 {
		return DateRange{}
	}
	return DateRange{Start: days[0], End: days[len(days)-1]}
}
