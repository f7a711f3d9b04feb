package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/studio-ledger/internal/ledger"
	"github.com/Veraticus/studio-ledger/internal/model"
)

// Field names a financial row of the summary sheet.
type Field string

// Financial fields in the order they are written.
const (
	FieldPrepayPhoto Field = "prepay_photo"
	FieldFactPhoto   Field = "fact_photo"
	FieldPrepayVideo Field = "prepay_video"
	FieldFactVideo   Field = "fact_video"
	FieldSchool      Field = "school"
	FieldAncillary   Field = "ancillary"
)

var financialFields = []Field{
	FieldPrepayPhoto,
	FieldFactPhoto,
	FieldPrepayVideo,
	FieldFactVideo,
	FieldSchool,
	FieldAncillary,
}

// FinancialFields returns the financial fields in write order.
func FinancialFields() []Field {
	out := make([]Field, len(financialFields))
	copy(out, financialFields)
	return out
}

// Layout maps report fields and hour categories to 1-based sheet rows.
type Layout struct {
	Financial map[Field]int
	Hours     map[model.Category]int
}

// DefaultLayout is the 21-row layout of the studio summary sheets.
func DefaultLayout() Layout {
	l := Layout{
		Financial: map[Field]int{
			FieldPrepayPhoto: 5,
			FieldPrepayVideo: 6,
			FieldFactPhoto:   7,
			FieldFactVideo:   8,
			FieldSchool:      13,
			FieldAncillary:   15,
		},
		Hours: map[model.Category]int{},
	}
	row := 46
	for _, c := range model.HourCategories() {
		if c == model.CategoryUnknown {
			continue
		}
		l.Hours[c] = row
		row++
	}
	l.Hours[model.CategoryUnknown] = 60
	return l
}

// Merge returns l with the positive row overrides applied. Keys are field
// and category names.
func (l Layout) Merge(financial map[string]int, hours map[string]int) (Layout, error) {
	out := Layout{
		Financial: make(map[Field]int, len(l.Financial)),
		Hours:     make(map[model.Category]int, len(l.Hours)),
	}
	for k, v := range l.Financial {
		out.Financial[k] = v
	}
	for k, v := range l.Hours {
		out.Hours[k] = v
	}

	for name, row := range financial {
		f := Field(strings.ToLower(name))
		if _, ok := out.Financial[f]; !ok {
			return Layout{}, fmt.Errorf("unknown financial field %q", name)
		}
		if row > 0 {
			out.Financial[f] = row
		}
	}
	for name, row := range hours {
		c, err := model.ParseCategory(strings.ToLower(name))
		if err != nil {
			return Layout{}, err
		}
		if c == model.CategoryDop {
			return Layout{}, fmt.Errorf("category %s has no hours row", c)
		}
		if row > 0 {
			out.Hours[c] = row
		}
	}
	return out, out.Validate()
}

// Validate checks that every field and hour category has a distinct
// positive row.
func (l Layout) Validate() error {
	used := map[int]string{}
	claim := func(name string, row int) error {
		if row <= 0 {
			return fmt.Errorf("%s: row must be positive, got %d", name, row)
		}
		if other, ok := used[row]; ok {
			return fmt.Errorf("%s: row %d already used by %s", name, row, other)
		}
		used[row] = name
		return nil
	}
	for _, f := range financialFields {
		row, ok := l.Financial[f]
		if !ok {
			return fmt.Errorf("missing row for %s", f)
		}
		if err := claim(string(f), row); err != nil {
			return err
		}
	}
	for _, c := range model.HourCategories() {
		row, ok := l.Hours[c]
		if !ok {
			return fmt.Errorf("missing hours row for %s", c)
		}
		if err := claim("hours "+string(c), row); err != nil {
			return err
		}
	}
	return nil
}

// Cell is one value destined for the summary sheet.
type Cell struct {
	Value  any
	Column string
	Row    int
}

// Ref is the A1 reference of the cell.
func (c Cell) Ref() string {
	return fmt.Sprintf("%s%d", c.Column, c.Row)
}

// ColumnLetter converts a 1-based column number to its sheet letters
// (1 → A, 26 → Z, 27 → AA). Non-positive input yields "".
func ColumnLetter(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append(out, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// DayColumn is the column of a day of the month: day 1 is column B.
func DayColumn(day int) string {
	return ColumnLetter(day + 1)
}

// Cells lists the financial cells followed by the hour cells of s.
func Cells(s ledger.Snapshot, layout Layout) []Cell {
	col := DayColumn(s.Date.Day())
	cells := make([]Cell, 0, len(financialFields)+len(layout.Hours))

	for _, f := range financialFields {
		cells = append(cells, Cell{Column: col, Row: layout.Financial[f], Value: financialValue(s, f)})
	}
	for _, c := range model.HourCategories() {
		row, ok := layout.Hours[c]
		if !ok {
			continue
		}
		cells = append(cells, Cell{Column: col, Row: row, Value: Round2(s.HoursFor(c))})
	}
	return cells
}

// FinancialCells is the financial part of Cells.
func FinancialCells(s ledger.Snapshot, layout Layout) []Cell {
	return Cells(s, layout)[:len(financialFields)]
}

func financialValue(s ledger.Snapshot, f Field) int {
	switch f {
	case FieldPrepayPhoto:
		return s.PrepayPhoto
	case FieldFactPhoto:
		return s.FactPhoto
	case FieldPrepayVideo:
		return s.PrepayVideo
	case FieldFactVideo:
		return s.FactVideo
	case FieldSchool:
		return s.SchoolRevenue
	case FieldAncillary:
		return s.FactAncillary
	}
	return 0
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
