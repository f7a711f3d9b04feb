// Package register turns cash-register ledger tables into financial
// contributions for a single day.
package register

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/studio-ledger/internal/classification"
	"github.com/Veraticus/studio-ledger/internal/model"
)

// Column layout of the register table.
const (
	colDate          = 0
	colAmountPrimary = 1
	colAmountBackup  = 3
	colDescription   = 4
	colAnalytics     = 6
	minColumns       = 4
)

// DateLayout is the format of the date column.
const DateLayout = "02.01.2006"

const revenueKeyword = "выручка"

// Options configures row acceptance and routing.
type Options struct {
	StudioToken     string
	CurrencyMarkers []string
	AncillaryKeys   []string
	ParkingKeys     []string
}

// DefaultOptions returns options for the studio identified by token.
func DefaultOptions(studioToken string) Options {
	return Options{
		StudioToken:     studioToken,
		CurrencyMarkers: []string{"р.", "₽"},
		AncillaryKeys:   classification.DefaultAncillaryKeys(),
		ParkingKeys:     []string{"парковк", "парк"},
	}
}

// Bucket is where a register row's amount lands.
type Bucket string

// Routing outcomes.
const (
	BucketIgnored   Bucket = "ignored"
	BucketAncillary Bucket = "ancillary"
	BucketParking   Bucket = "parking"
	BucketPhoto     Bucket = "photo"
	BucketVideo     Bucket = "video"
)

// Contribution is the register-derived part of a day's totals.
type Contribution struct {
	FactPhoto     int
	FactVideo     int
	FactAncillary int
	ParkingAmount int
	ParkingCount  int
}

// Add returns the sum of c and o.
func (c Contribution) Add(o Contribution) Contribution {
	return Contribution{
		FactPhoto:     c.FactPhoto + o.FactPhoto,
		FactVideo:     c.FactVideo + o.FactVideo,
		FactAncillary: c.FactAncillary + o.FactAncillary,
		ParkingAmount: c.ParkingAmount + o.ParkingAmount,
		ParkingCount:  c.ParkingCount + o.ParkingCount,
	}
}

// Rejections counts rows of the requested day that were dropped before
// routing.
type Rejections struct {
	Short         int
	BadAmount     int
	NonPositive   int
	ForeignStudio int
}

// Total is the number of rejected rows.
func (r Rejections) Total() int {
	return r.Short + r.BadAmount + r.NonPositive + r.ForeignStudio
}

// Reconciler parses and routes register rows. It holds no mutable state.
type Reconciler struct {
	opts Options
}

// New validates opts and returns a Reconciler.
func New(opts Options) (*Reconciler, error) {
	opts.StudioToken = strings.ToLower(strings.TrimSpace(opts.StudioToken))
	if opts.StudioToken == "" {
		return nil, fmt.Errorf("studio token is required")
	}
	if len(opts.CurrencyMarkers) == 0 {
		return nil, fmt.Errorf("at least one currency marker is required")
	}
	opts.CurrencyMarkers = lowerAll(opts.CurrencyMarkers)
	opts.AncillaryKeys = lowerAll(opts.AncillaryKeys)
	opts.ParkingKeys = lowerAll(opts.ParkingKeys)

	return &Reconciler{opts: opts}, nil
}

// ParseTable extracts the rows of day from a register table. The first row
// is a header and is skipped.
func (r *Reconciler) ParseTable(table [][]string, day time.Time) ([]model.RegisterRow, Rejections) {
	var (
		rows     []model.RegisterRow
		rejected Rejections
	)
	if len(table) < 2 {
		return nil, rejected
	}

	want := day.Format(DateLayout)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	for _, cells := range table[1:] {
		if len(cells) < minColumns {
			if len(cells) > 0 && strings.TrimSpace(cells[colDate]) == want {
				rejected.Short++
			}
			continue
		}
		if strings.TrimSpace(cells[colDate]) != want {
			continue
		}

		amount, ok := r.rowAmount(cells)
		if !ok {
			rejected.BadAmount++
			continue
		}
		if amount <= 0 {
			rejected.NonPositive++
			continue
		}

		desc := ""
		if len(cells) > colDescription {
			desc = strings.ToLower(strings.Join(cells[colDescription:], " "))
		}
		if !strings.Contains(desc, r.opts.StudioToken) {
			rejected.ForeignStudio++
			continue
		}

		tag := ""
		if len(cells) > colAnalytics {
			tag = strings.ToLower(cells[colAnalytics])
		}

		rows = append(rows, model.RegisterRow{
			Date:         date,
			Amount:       amount,
			Description:  desc,
			AnalyticsTag: tag,
		})
	}

	return rows, rejected
}

// rowAmount takes the first amount column carrying a currency marker.
func (r *Reconciler) rowAmount(cells []string) (int, bool) {
	for _, col := range []int{colAmountPrimary, colAmountBackup} {
		cell := strings.TrimSpace(cells[col])
		if r.hasMarker(cell) {
			return r.ParseAmount(cell)
		}
	}
	return 0, false
}

func (r *Reconciler) hasMarker(cell string) bool {
	low := strings.ToLower(cell)
	for _, m := range r.opts.CurrencyMarkers {
		if strings.HasPrefix(low, m) {
			return true
		}
	}
	return false
}

// ParseAmount parses a marker-prefixed currency cell such as "р.1 500,00"
// into whole roubles. Kopecks are rounded half away from zero.
//
// Commas and dots followed by exactly three digits group thousands, so
// "р.1,500" and "р.1.500" are both 1500. Only a final separator followed by
// one or two digits starts kopecks.
func (r *Reconciler) ParseAmount(cell string) (int, bool) {
	low := strings.ToLower(strings.TrimSpace(cell))
	matched := false
	for _, m := range r.opts.CurrencyMarkers {
		if strings.HasPrefix(low, m) {
			low = strings.TrimPrefix(low, m)
			matched = true
			break
		}
	}
	if !matched {
		return 0, false
	}

	num, ok := normalizeAmount(strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(low))
	if !ok {
		return 0, false
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0, false
	}
	return int(d.Round(0).IntPart()), true
}

// normalizeAmount rewrites num into the plain "-1500.5" form decimal parses.
func normalizeAmount(num string) (string, bool) {
	parts := strings.FieldsFunc(num, func(r rune) bool { return r == ',' || r == '.' })
	if len(parts) == 0 || strings.Count(num, ",")+strings.Count(num, ".") != len(parts)-1 {
		return "", false
	}

	frac := ""
	if last := parts[len(parts)-1]; len(parts) > 1 && len(last) <= 2 {
		frac = last
		parts = parts[:len(parts)-1]
	}
	for _, group := range parts[1:] {
		if len(group) != 3 {
			return "", false
		}
	}

	whole := strings.Join(parts, "")
	if frac != "" {
		return whole + "." + frac, true
	}
	return whole, true
}

// Route decides the bucket of an accepted row. Ancillary keys are checked
// before the revenue/analytics pair, so a row is never counted twice.
func (r *Reconciler) Route(row model.RegisterRow) Bucket {
	desc := strings.ToLower(row.Description)
	tag := strings.ToLower(row.AnalyticsTag)

	if classification.ContainsAny(desc, r.opts.AncillaryKeys...) {
		if classification.ContainsAny(desc, r.opts.ParkingKeys...) {
			return BucketParking
		}
		return BucketAncillary
	}
	if !strings.Contains(desc, revenueKeyword) {
		return BucketIgnored
	}
	switch {
	case strings.Contains(tag, "фото"):
		return BucketPhoto
	case strings.Contains(tag, "видео"), strings.Contains(tag, "мастер"):
		return BucketVideo
	}
	return BucketIgnored
}

// Reconcile folds accepted rows into a Contribution. Non-positive amounts
// contribute nothing even if they reach this point.
func (r *Reconciler) Reconcile(rows []model.RegisterRow) Contribution {
	var c Contribution
	for _, row := range rows {
		if row.Amount <= 0 {
			continue
		}
		switch r.Route(row) {
		case BucketParking:
			c.FactAncillary += row.Amount
			c.ParkingAmount += row.Amount
			c.ParkingCount++
		case BucketAncillary:
			c.FactAncillary += row.Amount
		case BucketPhoto:
			c.FactPhoto += row.Amount
		case BucketVideo:
			c.FactVideo += row.Amount
		case BucketIgnored:
		}
	}
	return c
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
