// Package report renders day aggregates as the operator text report and as
// summary sheet cells.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/studio-ledger/internal/ledger"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/register"
)

// Money line labels.
const (
	labelPrepayPhoto = "Предоплаты фото"
	labelPrepayVideo = "Предоплаты видео"
	labelFactPhoto   = "По факту фото"
	labelFactVideo   = "По факту видео"
	labelAncillary   = "Доп. услуги"
)

// WriteDay writes the text block of one day: hour lines, money lines and the
// pending cell updates of its financial rows.
func WriteDay(w io.Writer, s ledger.Snapshot, layout Layout) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Day %s:\n", s.Date.Format(register.DateLayout))
	for _, c := range model.HourCategories() {
		fmt.Fprintf(&b, "%s: %s ч (бронирований: %d)\n", c.Label(), FormatHours(s.HoursFor(c)), s.CountFor(c))
	}

	fmt.Fprintf(&b, "%s: %d руб.\n", labelPrepayPhoto, s.PrepayPhoto)
	fmt.Fprintf(&b, "%s: %d руб.\n", labelPrepayVideo, s.PrepayVideo)
	fmt.Fprintf(&b, "%s: %d руб.\n", labelFactPhoto, s.FactPhoto)
	fmt.Fprintf(&b, "%s: %d руб.\n", labelFactVideo, s.FactVideo)
	fmt.Fprintf(&b, "%s: %d руб.\n", labelAncillary, s.FactAncillary)
	fmt.Fprintf(&b, "Парковки сумма: %d руб.; кол-во: %d\n", s.ParkingAmount, s.ParkingCount)
	fmt.Fprintf(&b, "Школа по часам: %d руб.\n", s.SchoolRevenue)

	b.WriteString("Обновления для дня:\n")
	for _, cell := range FinancialCells(s, layout) {
		fmt.Fprintf(&b, "%s: %v\n", cell.Ref(), cell.Value)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTotals writes the period hour totals.
func WriteTotals(w io.Writer, t ledger.Totals) error {
	var b strings.Builder
	b.WriteString("Общие часы за период:\n")
	for _, c := range model.HourCategories() {
		fmt.Fprintf(&b, "%s: %s ч\n", c.Label(), FormatHours(t.Hours(c)))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WritePeriod writes every day block followed by the period totals.
func WritePeriod(w io.Writer, days []ledger.Snapshot, totals ledger.Totals, layout Layout) error {
	for _, s := range days {
		if err := WriteDay(w, s, layout); err != nil {
			return err
		}
	}
	return WriteTotals(w, totals)
}

// FormatHours rounds to two places and always keeps a fractional part, so
// three hours print as "3.0" and two and a half as "2.5".
func FormatHours(h float64) string {
	s := strconv.FormatFloat(Round2(h), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
