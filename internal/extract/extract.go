// Package extract recovers structured fields from the free-text body of a
// booking.
//
// Every extractor degrades to "absent" on malformed input. Callers substitute
// their own defaults; nothing here returns an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/studio-ledger/internal/model"
)

var (
	timeRangeRegex     = regexp.MustCompile(`(?:с|c)\s*(\d{1,2}):(\d{2}).*?до\s*(\d{1,2}):(\d{2})`)
	declaredShortRegex = regexp.MustCompile(`кол-?\s*во\s*часов[:\s]*(\d+)`)
	declaredLongRegex  = regexp.MustCompile(`количество\s+часов[:\s]*(\d+)`)
	prepaidRegex       = regexp.MustCompile(`(\d+(?:[ \x{00a0}]\d{3})*)\s*руб\.`)
	bookingDateRegex   = regexp.MustCompile(`дата:\s*(\d{1,2})\s*(\p{L}+)\s*(\d{4})`)
)

const prepaidMarker = "итого оплачено"

// Fields runs every extractor over text.
func Fields(text model.BookingText) model.ExtractedFields {
	var f model.ExtractedFields

	if start, end, ok := TimeRange(text); ok {
		f.Start, f.End = &start, &end
	}
	if hours, hint, ok := DeclaredHours(text); ok {
		f.DeclaredHours = &hours
		if hint != "" {
			f.HintLine = &hint
		}
	}
	if date, ok := BookingDate(text); ok {
		f.BookingDate = &date
	}
	f.PrepaidAmount = Prepaid(text)

	return f
}

// TimeRange finds the "с HH:MM ... до HH:MM" range. Both the Cyrillic and the
// Latin "c" are accepted as the opening preposition.
func TimeRange(text model.BookingText) (start, end model.Clock, ok bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(string(text)), " "))

	m := timeRangeRegex.FindStringSubmatch(normalized)
	if m == nil {
		return model.Clock{}, model.Clock{}, false
	}

	start, okStart := parseClock(m[1], m[2])
	end, okEnd := parseClock(m[3], m[4])
	if !okStart || !okEnd {
		return model.Clock{}, model.Clock{}, false
	}
	return start, end, true
}

// parseClock validates an hour/minute pair. 24:00 denotes the end of the day
// and is folded to 00:00.
func parseClock(h, m string) (model.Clock, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil {
		return model.Clock{}, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute > 59 {
		return model.Clock{}, false
	}
	switch {
	case hour == 24 && minute == 0:
		hour = 0
	case hour > 23:
		return model.Clock{}, false
	}
	return model.Clock{Hour: hour, Minute: minute}, true
}

// DeclaredHours returns the operator-entered hour count and the line that
// follows it. Only the first labelled line counts. hint is empty when the
// label is on the last line.
func DeclaredHours(text model.BookingText) (hours int, hint string, ok bool) {
	lines := nonEmptyLines(text)
	for i, line := range lines {
		low := strings.ToLower(line)

		m := declaredShortRegex.FindStringSubmatch(low)
		if m == nil {
			m = declaredLongRegex.FindStringSubmatch(low)
		}
		if m == nil {
			continue
		}

		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, "", false
		}
		if i+1 < len(lines) {
			hint = strings.ToLower(lines[i+1])
		}
		return n, hint, true
	}
	return 0, "", false
}

// Prepaid returns the amount on the first "итого оплачено" line that carries
// a rouble figure, or 0. Digit groups split by spaces are joined, so
// "12 500 руб." is 12500 rather than the trailing 500.
func Prepaid(text model.BookingText) int {
	for _, line := range nonEmptyLines(text) {
		low := strings.ToLower(line)
		if !strings.Contains(low, prepaidMarker) {
			continue
		}
		m := prepaidRegex.FindStringSubmatch(low)
		if m == nil {
			continue
		}
		digits := strings.NewReplacer(" ", "", "\u00a0", "").Replace(m[1])
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		return n
	}
	return 0
}

// BookingDate parses "дата: 5 октября 2025". Genitive and nominative month
// names are both understood.
func BookingDate(text model.BookingText) (time.Time, bool) {
	for _, line := range nonEmptyLines(text) {
		m := bookingDateRegex.FindStringSubmatch(strings.ToLower(line))
		if m == nil {
			continue
		}

		day, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, false
		}
		month, ok := MonthNumber(m[2])
		if !ok {
			return time.Time{}, false
		}

		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if date.Day() != day || date.Month() != month {
			return time.Time{}, false
		}
		return date, true
	}
	return time.Time{}, false
}

func nonEmptyLines(text model.BookingText) []string {
	raw := strings.Split(string(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}
