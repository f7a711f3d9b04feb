package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/studio-ledger/internal/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.October, d, 0, 0, 0, 0, time.UTC)
}

func ranged(sh, sm, eh, em int, date *time.Time) model.ExtractedFields {
	start := model.Clock{Hour: sh, Minute: sm}
	end := model.Clock{Hour: eh, Minute: em}
	return model.ExtractedFields{Start: &start, End: &end, BookingDate: date}
}

func TestCompute(t *testing.T) {
	oct5 := day(5)
	oct1 := day(1)
	three := 3

	tests := []struct {
		name     string
		fields   model.ExtractedFields
		day      time.Time
		wantDay  float64
		wantFull float64
		explicit bool
	}{
		{
			name:     "same day range",
			fields:   ranged(10, 0, 13, 0, nil),
			day:      oct5,
			wantDay:  3,
			wantFull: 3,
			explicit: true,
		},
		{
			name:     "overnight on its start day",
			fields:   ranged(22, 0, 2, 0, &oct5),
			day:      oct5,
			wantDay:  2,
			wantFull: 4,
			explicit: true,
		},
		{
			name:     "overnight on the following day",
			fields:   ranged(22, 0, 2, 0, &oct5),
			day:      day(6),
			wantDay:  2,
			wantFull: 4,
			explicit: true,
		},
		{
			name:     "equal clocks are a full day",
			fields:   ranged(10, 0, 10, 0, nil),
			day:      oct5,
			wantDay:  14,
			wantFull: 24,
			explicit: true,
		},
		{
			name:     "booking on another date",
			fields:   ranged(10, 0, 13, 0, &oct1),
			day:      oct5,
			wantDay:  0,
			wantFull: 3,
			explicit: true,
		},
		{
			name:     "half hour rounds to even down",
			fields:   ranged(10, 0, 12, 30, nil),
			day:      oct5,
			wantDay:  2,
			wantFull: 2.5,
			explicit: true,
		},
		{
			name:     "half hour rounds to even up",
			fields:   ranged(10, 0, 13, 30, nil),
			day:      oct5,
			wantDay:  4,
			wantFull: 3.5,
			explicit: true,
		},
		{
			name:     "declared hours fallback",
			fields:   model.ExtractedFields{DeclaredHours: &three},
			day:      oct5,
			wantDay:  3,
			wantFull: 3,
		},
		{
			name:   "nothing known",
			fields: model.ExtractedFields{},
			day:    oct5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.fields, tt.day)
			assert.InDelta(t, tt.wantDay, got.HoursInDay, 1e-9)
			assert.InDelta(t, tt.wantFull, got.FullDurationHours, 1e-9)
			assert.Equal(t, tt.explicit, got.Explicit)
			assert.GreaterOrEqual(t, got.HoursInDay, 0.0)
		})
	}
}

func TestBounds(t *testing.T) {
	start, end := Bounds(model.Clock{Hour: 23}, model.Clock{Hour: 1}, day(5))

	assert.Equal(t, 5, start.Day())
	assert.Equal(t, 6, end.Day())
	assert.Equal(t, 2*time.Hour, end.Sub(start))
}

func TestOverlap(t *testing.T) {
	winStart, winEnd := Window(day(5))
	assert.Equal(t, 24*time.Hour, winEnd.Sub(winStart))

	assert.Equal(t, time.Duration(0), Overlap(day(3), day(4), day(5)))
	assert.Equal(t, 24*time.Hour, Overlap(day(4), day(7), day(5)))
	assert.Equal(t, time.Duration(0), Overlap(day(6), day(5), day(5)))
}
