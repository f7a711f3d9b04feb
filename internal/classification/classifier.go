// Package classification assigns bookings to canonical categories using a
// fixed chain of keyword rules.
package classification

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/studio-ledger/internal/extract"
	"github.com/Veraticus/studio-ledger/internal/model"
)

// noShowPhrase overrides an unknown result. It is matched case-sensitively
// against the raw text.
const noShowPhrase = "Не приехали"

// Keyword maps a lower-case substring to a category.
type Keyword struct {
	Key      string
	Category model.Category
}

// Input is what a rule sees: the lower-cased booking text and the lower-cased
// hint line (empty when the booking declares no hours).
type Input struct {
	Text string
	Hint string
}

// Rule is one link of the classification chain.
type Rule struct {
	Match func(in Input) (model.Category, bool)
	Name  string
}

// Match is the outcome of a classification together with the rule that
// produced it.
type Match struct {
	Category model.Category
	Rule     string
}

// Classifier evaluates its rules in fixed priority order; the first rule that
// matches decides the category.
type Classifier struct {
	keywords  []Keyword
	ancillary []string
	rules     []Rule
}

// New builds a classifier from a keyword table and an ancillary key set.
// Keywords are ordered longest first so that a short key never pre-empts a
// longer key containing it.
func New(keywords []Keyword, ancillary []string) (*Classifier, error) {
	ordered := make([]Keyword, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))

	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw.Key))
		if key == "" {
			return nil, fmt.Errorf("empty keyword for category %s", kw.Category)
		}
		if !kw.Category.Valid() {
			return nil, fmt.Errorf("keyword %q: unknown category %q", key, kw.Category)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate keyword %q", key)
		}
		seen[key] = true
		ordered = append(ordered, Keyword{Key: key, Category: kw.Category})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Key) > utf8.RuneCountInString(ordered[j].Key)
	})

	anc := make([]string, 0, len(ancillary))
	for _, k := range ancillary {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return nil, fmt.Errorf("empty ancillary keyword")
		}
		anc = append(anc, k)
	}

	c := &Classifier{
		keywords:  ordered,
		ancillary: anc,
	}
	c.rules = append([]Rule{
		{Name: "hint", Match: c.matchHint},
		{Name: "keyword", Match: c.matchText},
		{Name: "ancillary", Match: c.matchAncillary},
	}, fallbackRules()...)

	return c, nil
}

// NewDefault returns a classifier over the built-in tables.
func NewDefault() *Classifier {
	c, err := New(DefaultKeywords(), DefaultAncillaryKeys())
	if err != nil {
		panic(fmt.Sprintf("default classification tables are invalid: %v", err))
	}
	return c
}

// Classify categorizes a booking, taking the hint line from its declared
// hours label.
func (c *Classifier) Classify(text model.BookingText) model.Category {
	_, hint, _ := extract.DeclaredHours(text)
	return c.Explain(text, hint).Category
}

// ClassifyFields categorizes a booking whose fields were already extracted.
func (c *Classifier) ClassifyFields(fields model.ExtractedFields, text model.BookingText) model.Category {
	hint := ""
	if fields.HintLine != nil {
		hint = *fields.HintLine
	}
	return c.Explain(text, hint).Category
}

// Explain runs the chain and reports which rule decided.
func (c *Classifier) Explain(text model.BookingText, hint string) Match {
	in := Input{
		Text: strings.ToLower(string(text)),
		Hint: strings.ToLower(hint),
	}
	for _, r := range c.rules {
		if cat, ok := r.Match(in); ok {
			return Match{Category: cat, Rule: r.Name}
		}
	}
	return Match{Category: model.CategoryUnknown, Rule: "none"}
}

// RuleNames lists the chain in evaluation order.
func (c *Classifier) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// ApplyNoShowOverride turns an unknown result into no_show when the operator
// marked the booking with "Не приехали". Any other category passes through.
func ApplyNoShowOverride(category model.Category, text model.BookingText) model.Category {
	if category == model.CategoryUnknown && strings.Contains(string(text), noShowPhrase) {
		return model.CategoryNoShow
	}
	return category
}

func (c *Classifier) matchHint(in Input) (model.Category, bool) {
	if in.Hint == "" {
		return "", false
	}
	return c.lookup(in.Hint)
}

func (c *Classifier) matchText(in Input) (model.Category, bool) {
	return c.lookup(in.Text)
}

func (c *Classifier) matchAncillary(in Input) (model.Category, bool) {
	return model.CategoryDop, containsAny(in.Text, c.ancillary...)
}

func (c *Classifier) lookup(s string) (model.Category, bool) {
	for _, kw := range c.keywords {
		if strings.Contains(s, kw.Key) {
			return kw.Category, true
		}
	}
	return "", false
}

// ContainsAny reports whether s contains any of keys.
func ContainsAny(s string, keys ...string) bool {
	return containsAny(s, keys...)
}

func containsAny(s string, keys ...string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
