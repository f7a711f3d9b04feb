// Package ledger accumulates per-day and per-period totals.
//
// Every operation returns a new value; a Day or Totals is never modified in
// place, so a snapshot handed to a writer cannot change underneath it.
package ledger

import (
	"math"
	"time"

	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/register"
)

// SchoolHourlyRate is the rouble value of one photo-school hour.
const SchoolHourlyRate = 600

// Day is the running aggregate of one calendar day.
type Day struct {
	date        time.Time
	hours       map[model.Category]float64
	counts      map[model.Category]int
	prepayPhoto int
	prepayVideo int
	register    register.Contribution
}

// NewDay starts an empty aggregate for date.
func NewDay(date time.Time) Day {
	return Day{
		date:   date,
		hours:  map[model.Category]float64{},
		counts: map[model.Category]int{},
	}
}

// AddBooking folds one booking into the day. Prepayments count towards the
// photo or video bucket only; other categories carry no prepayment bucket.
func (d Day) AddBooking(r model.BookingRecord) Day {
	cat := r.Category
	if !cat.Valid() {
		cat = model.CategoryUnknown
	}
	hours := r.HoursInDay
	if hours < 0 || math.IsNaN(hours) {
		hours = 0
	}

	next := d.clone()
	next.hours[cat] += hours
	next.counts[cat]++

	switch cat {
	case model.CategoryPhoto:
		next.prepayPhoto += r.PrepaidAmount
	case model.CategoryVideoMaster:
		next.prepayVideo += r.PrepaidAmount
	}
	return next
}

// AddRegister folds register-derived money into the day.
func (d Day) AddRegister(c register.Contribution) Day {
	next := d.clone()
	next.register = next.register.Add(c)
	return next
}

// Snapshot freezes the day. Every category of the enumeration is present.
func (d Day) Snapshot() Snapshot {
	s := Snapshot{
		Date:          d.date,
		Hours:         make(map[model.Category]float64, len(model.AllCategories())),
		Counts:        make(map[model.Category]int, len(model.AllCategories())),
		PrepayPhoto:   d.prepayPhoto,
		PrepayVideo:   d.prepayVideo,
		FactPhoto:     d.register.FactPhoto,
		FactVideo:     d.register.FactVideo,
		FactAncillary: d.register.FactAncillary,
		ParkingAmount: d.register.ParkingAmount,
		ParkingCount:  d.register.ParkingCount,
	}
	for _, c := range model.AllCategories() {
		s.Hours[c] = d.hours[c]
		s.Counts[c] = d.counts[c]
	}
	s.SchoolRevenue = SchoolRevenue(s.Hours[model.CategorySchoolClass], s.Hours[model.CategorySchoolHomework])
	return s
}

func (d Day) clone() Day {
	next := d
	next.hours = make(map[model.Category]float64, len(d.hours)+1)
	for k, v := range d.hours {
		next.hours[k] = v
	}
	next.counts = make(map[model.Category]int, len(d.counts)+1)
	for k, v := range d.counts {
		next.counts[k] = v
	}
	return next
}

// Snapshot is the finished aggregate of one day.
type Snapshot struct {
	Date          time.Time
	Hours         map[model.Category]float64
	Counts        map[model.Category]int
	PrepayPhoto   int
	PrepayVideo   int
	FactPhoto     int
	FactVideo     int
	FactAncillary int
	ParkingAmount int
	ParkingCount  int
	SchoolRevenue int
}

// HoursFor returns the hours of c, zero when absent.
func (s Snapshot) HoursFor(c model.Category) float64 {
	return s.Hours[c]
}

// CountFor returns the booking count of c, zero when absent.
func (s Snapshot) CountFor(c model.Category) int {
	return s.Counts[c]
}

// SchoolRevenue is round((class + homework) * SchoolHourlyRate).
func SchoolRevenue(classHours, homeworkHours float64) int {
	return int(math.Round((classHours + homeworkHours) * SchoolHourlyRate))
}

// Totals accumulates hours and counts across a period.
type Totals struct {
	hours  map[model.Category]float64
	counts map[model.Category]int
	days   int
}

// NewTotals returns empty period totals.
func NewTotals() Totals {
	return Totals{
		hours:  map[model.Category]float64{},
		counts: map[model.Category]int{},
	}
}

// Add returns t with the day folded in.
func (t Totals) Add(s Snapshot) Totals {
	next := Totals{
		hours:  make(map[model.Category]float64, len(t.hours)),
		counts: make(map[model.Category]int, len(t.counts)),
		days:   t.days + 1,
	}
	for k, v := range t.hours {
		next.hours[k] = v
	}
	for k, v := range t.counts {
		next.counts[k] = v
	}
	for c, h := range s.Hours {
		next.hours[c] += h
	}
	for c, n := range s.Counts {
		next.counts[c] += n
	}
	return next
}

// Hours returns the period hours of c.
func (t Totals) Hours(c model.Category) float64 {
	return t.hours[c]
}

// Count returns the period booking count of c.
func (t Totals) Count(c model.Category) int {
	return t.counts[c]
}

// Days is the number of days folded in.
func (t Totals) Days() int {
	return t.days
}
