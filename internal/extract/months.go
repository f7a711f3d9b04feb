package extract

import (
	"strings"
	"time"
)

var genitiveMonths = map[string]string{
	"января":   "январь",
	"февраля":  "февраль",
	"марта":    "март",
	"апреля":   "апрель",
	"мая":      "май",
	"июня":     "июнь",
	"июля":     "июль",
	"августа":  "август",
	"сентября": "сентябрь",
	"октября":  "октябрь",
	"ноября":   "ноябрь",
	"декабря":  "декабрь",
}

var nominativeMonths = map[string]time.Month{
	"январь":   time.January,
	"февраль":  time.February,
	"март":     time.March,
	"апрель":   time.April,
	"май":      time.May,
	"июнь":     time.June,
	"июль":     time.July,
	"август":   time.August,
	"сентябрь": time.September,
	"октябрь":  time.October,
	"ноябрь":   time.November,
	"декабрь":  time.December,
}

// MonthNumber maps a Russian month name, genitive or nominative, to its month.
func MonthNumber(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if nominative, ok := genitiveMonths[name]; ok {
		name = nominative
	}
	m, ok := nominativeMonths[name]
	return m, ok
}

// MonthName returns the lower-case nominative Russian name of m.
func MonthName(m time.Month) string {
	for name, month := range nominativeMonths {
		if month == m {
			return name
		}
	}
	return ""
}
