package model

import "fmt"

// Category is a canonical booking category tag.
type Category string

// Booking categories. CategoryDop and CategoryUnknown are synthetic fallbacks
// that never appear in the primary keyword table.
const (
	CategoryPhoto           Category = "photo"
	CategoryBanquet         Category = "banquet"
	CategoryVideoMaster     Category = "video_master"
	CategoryEvent           Category = "event"
	CategoryCorporate       Category = "corporate"
	CategorySchoolClass     Category = "school_class"
	CategorySchoolHomework  Category = "school_homework"
	CategoryFloating        Category = "floating"
	CategoryNoShow          Category = "no_show"
	CategoryTech            Category = "tech"
	CategoryEventBlank      Category = "event_blank"
	CategoryEventSisiaWhite Category = "event_sisia_white"
	CategoryYauzaPlace      Category = "yauza_place"
	CategoryCrystal         Category = "crystal"
	CategoryDop             Category = "dop"
	CategoryUnknown         Category = "unknown"
)

var allCategories = []Category{
	CategoryPhoto,
	CategoryBanquet,
	CategoryVideoMaster,
	CategoryEvent,
	CategoryCorporate,
	CategorySchoolClass,
	CategorySchoolHomework,
	CategoryFloating,
	CategoryNoShow,
	CategoryTech,
	CategoryEventBlank,
	CategoryEventSisiaWhite,
	CategoryYauzaPlace,
	CategoryCrystal,
	CategoryDop,
	CategoryUnknown,
}

// Russian labels used by the text report.
var categoryLabels = map[Category]string{
	CategoryPhoto:           "Фотосъемка",
	CategoryBanquet:         "Банкет",
	CategoryVideoMaster:     "Видео съемки/Мастер класс",
	CategoryEvent:           "Мероприятие",
	CategoryCorporate:       "Корпоративные клиенты",
	CategorySchoolClass:     "фотошкола занятия",
	CategorySchoolHomework:  "фотошкола домашние работы студентов",
	CategoryFloating:        "Плавающая бронь",
	CategoryNoShow:          "Не приехали/не приедут",
	CategoryTech:            "тех.бронь",
	CategoryEventBlank:      "мероприятие бланк",
	CategoryEventSisiaWhite: "мероприятие Сися и White Studios",
	CategoryYauzaPlace:      "мероприятия yauza_place",
	CategoryCrystal:         "мероприятия crystal",
	CategoryDop:             "Доп. услуги",
	CategoryUnknown:         "Неопределённые",
}

// AllCategories returns every member of the closed enumeration in report order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// HourCategories returns the categories that own an hours row in the summary
// sheet and a line in the text report. Ancillary bookings have no hours bucket.
func HourCategories() []Category {
	out := make([]Category, 0, len(allCategories)-1)
	for _, c := range allCategories {
		if c != CategoryDop {
			out = append(out, c)
		}
	}
	return out
}

// ParseCategory validates s against the closed enumeration.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is a member of the enumeration.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the report label for c.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}
