package classification

import "github.com/Veraticus/studio-ledger/internal/model"

// DefaultKeywords returns the canonical keyword table. Keys are lower-case
// substrings of the booking text.
func DefaultKeywords() []Keyword {
	return []Keyword{
		{Key: "фотосъемка", Category: model.CategoryPhoto},
		{Key: "банкет", Category: model.CategoryBanquet},
		{Key: "видео съемки/мастер класс", Category: model.CategoryVideoMaster},
		{Key: "мероприятие", Category: model.CategoryEvent},
		{Key: "корпоративные клиенты", Category: model.CategoryCorporate},
		{Key: "фотошкола занятия", Category: model.CategorySchoolClass},
		{Key: "фотошкола домашние работы студентов", Category: model.CategorySchoolHomework},
		{Key: "плавающая бронь", Category: model.CategoryFloating},
		{Key: "не приехали/не приедут", Category: model.CategoryNoShow},
		{Key: "тех.бронь", Category: model.CategoryTech},
		{Key: "мероприятие бланк", Category: model.CategoryEventBlank},
		{Key: "мероприятие сися и white studios", Category: model.CategoryEventSisiaWhite},
		{Key: "мероприятия yauza_place", Category: model.CategoryYauzaPlace},
		{Key: "мероприятия crystal", Category: model.CategoryCrystal},
	}
}

// DefaultAncillaryKeys returns the substrings that mark ancillary services
// (parking, backdrops, cyclorama, outdoor shooting, rentals, stands, power).
// The same set routes cash-register lines to the ancillary bucket.
func DefaultAncillaryKeys() []string {
	return []string{
		"парковк",
		"цикл",
		"циклорама",
		"фон",
		"улице",
		"парк",
		"отпар",
		"аренда",
		"улиц",
		"раннее",
		"позднее",
		"стойк",
		"источник",
	}
}

// fallbackRules are the coarse heuristics tried after both keyword scans and
// the ancillary check have failed.
func fallbackRules() []Rule {
	return []Rule{
		{
			Name: "video",
			Match: func(in Input) (model.Category, bool) {
				return model.CategoryVideoMaster, containsAny(in.Text, "видео", "мастер", "мастеркласс")
			},
		},
		{
			Name: "school",
			Match: func(in Input) (model.Category, bool) {
				if !containsAny(in.Text, "школ", "занятия", "домашние") {
					return "", false
				}
				if containsAny(in.Text, "домаш") {
					return model.CategorySchoolHomework, true
				}
				return model.CategorySchoolClass, true
			},
		},
		{
			Name: "corporate",
			Match: func(in Input) (model.Category, bool) {
				return model.CategoryCorporate, containsAny(in.Text, "корпор", "корп")
			},
		},
		{
			Name: "event",
			Match: func(in Input) (model.Category, bool) {
				if !containsAny(in.Text, "мероприяти", "yauza", "crystal", "сися", "white studios") {
					return "", false
				}
				if containsAny(in.Text, "сися", "white studios") {
					return model.CategoryEventSisiaWhite, true
				}
				return model.CategoryEvent, true
			},
		},
		literal("floating", model.CategoryFloating),
		literal("no_show", model.CategoryNoShow),
		literal("tech", model.CategoryTech),
	}
}

func literal(token string, category model.Category) Rule {
	return Rule{
		Name: "literal:" + token,
		Match: func(in Input) (model.Category, bool) {
			return category, containsAny(in.Text, token)
		},
	}
}
