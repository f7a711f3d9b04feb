package sheets

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/studio-ledger/internal/extract"
)

// SummarySheetName is the summary sheet of t's month: capitalised month and
// two-digit year, "Октябрь25".
func SummarySheetName(t time.Time) string {
	name := extract.MonthName(t.Month())
	r, size := utf8.DecodeRuneInString(name)
	return fmt.Sprintf("%c%s%02d", unicode.ToUpper(r), name[size:], t.Year()%100)
}

// RegisterSheetName is the register sheet of t's month: lower-case month and
// full year, "октябрь 2025".
func RegisterSheetName(t time.Time) string {
	return fmt.Sprintf("%s %d", extract.MonthName(t.Month()), t.Year())
}

// A1 prefixes ref with a quoted sheet title.
func A1(sheet, ref string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), ref)
}
