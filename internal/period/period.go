// Package period expands textual period expressions into calendar days.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/studio-ledger/internal/common"
)

// Accepted shapes.
var (
	crossRangeRegex = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})\s*-\s*(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	dayRangeRegex   = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})\s+(\d{1,2})\s+(\d{4})$`)
	monthRegex      = regexp.MustCompile(`^(\d{1,2})\s+(\d{4})$`)
	singleDayRegex  = regexp.MustCompile(`^(\d{1,2})\s+(\d{1,2})\s+(\d{4})$`)
)

// Usage describes the accepted shapes for operator prompts.
const Usage = "dd mm yyyy (day), mm yyyy (month), dd-dd mm yyyy (range), dd.mm.yyyy-dd.mm.yyyy (cross-month range)"

// Parse returns the days described by expr in ascending order. Days are
// midnight UTC. Any other shape, an impossible date or an empty range yields
// an error wrapping common.ErrInvalidPeriod.
func Parse(expr string) ([]time.Time, error) {
	expr = strings.Join(strings.Fields(expr), " ")

	if m := crossRangeRegex.FindStringSubmatch(expr); m != nil {
		start, err := date(m[1], m[2], m[3])
		if err != nil {
			return nil, invalid(expr, err)
		}
		end, err := date(m[4], m[5], m[6])
		if err != nil {
			return nil, invalid(expr, err)
		}
		return span(expr, start, end)
	}

	if m := dayRangeRegex.FindStringSubmatch(expr); m != nil {
		start, err := date(m[1], m[3], m[4])
		if err != nil {
			return nil, invalid(expr, err)
		}
		end, err := date(m[2], m[3], m[4])
		if err != nil {
			return nil, invalid(expr, err)
		}
		return span(expr, start, end)
	}

	if m := monthRegex.FindStringSubmatch(expr); m != nil {
		start, err := date("1", m[1], m[2])
		if err != nil {
			return nil, invalid(expr, err)
		}
		return span(expr, start, start.AddDate(0, 1, -1))
	}

	if m := singleDayRegex.FindStringSubmatch(expr); m != nil {
		d, err := date(m[1], m[2], m[3])
		if err != nil {
			return nil, invalid(expr, err)
		}
		return []time.Time{d}, nil
	}

	return nil, fmt.Errorf("%w: %q does not match %s", common.ErrInvalidPeriod, expr, Usage)
}

// Day returns midnight UTC of the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func date(d, m, y string) (time.Time, error) {
	day, _ := strconv.Atoi(d)
	month, _ := strconv.Atoi(m)
	year, _ := strconv.Atoi(y)

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	t := Day(year, time.Month(month), day)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%02d.%02d.%04d is not a calendar date", day, month, year)
	}
	return t, nil
}

func span(expr string, start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %q ends before it starts", common.ErrInvalidPeriod, expr)
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

func invalid(expr string, err error) error {
	return fmt.Errorf("%w: %q: %v", common.ErrInvalidPeriod, expr, err)
}
