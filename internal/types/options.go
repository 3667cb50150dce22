package types

import (
	"fmt"
	"strings"
)

// SortOrder selects how a star list is ordered for display
type SortOrder string

const (
	SortStarsDesc SortOrder = "desc"
	SortStarsAsc  SortOrder = "asc"
	SortRecent    SortOrder = "recent"
)

// SortOrders lists the orders in the sequence the UI cycles through them
var SortOrders = []SortOrder{SortStarsDesc, SortStarsAsc, SortRecent}

// Label returns the human-readable name shown in the UI
func (s SortOrder) Label() string {
	switch s {
	case SortStarsAsc:
		return "Stars: Low to High"
	case SortRecent:
		return "Recently Added"
	default:
		return "Stars: High to Low"
	}
}

// Next returns the order following s in SortOrders
func (s SortOrder) Next() SortOrder {
	for i, o := range SortOrders {
		if o == s {
			return SortOrders[(i+1)%len(SortOrders)]
		}
	}

	return SortStarsDesc
}

// ParseSortOrder accepts the CLI spellings of a sort order
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "stars-desc", "high":
		return SortStarsDesc, nil
	case "asc", "stars-asc", "low":
		return SortStarsAsc, nil
	case "recent", "added", "recently-added":
		return SortRecent, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (must be desc, asc, or recent)", s)
	}
}

// Period is the time window for trending repositories
type Period string

const (
	PeriodDaily   Period = "Today"
	PeriodWeekly  Period = "This Week"
	PeriodMonthly Period = "This Month"
)

// Periods lists all trending periods in display order
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly}

// Next returns the period following p in Periods
func (p Period) Next() Period {
	for i, v := range Periods {
		if v == p {
			return Periods[(i+1)%len(Periods)]
		}
	}

	return PeriodDaily
}

// ParsePeriod accepts the CLI spellings of a trending period
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "daily", "day":
		return PeriodDaily, nil
	case "week", "weekly", "this week":
		return PeriodWeekly, nil
	case "month", "monthly", "this month":
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("unknown period %q (must be today, week, or month)", s)
	}
}

// LanguageAll leaves the trending request unconstrained by language
const LanguageAll = "All"

// Languages lists the language filters offered for trending repositories
var Languages = []string{LanguageAll, "JavaScript", "TypeScript", "Python", "Rust", "Go", "Java", "C++"}

// NextLanguage returns the language following lang in Languages
func NextLanguage(lang string) string {
	for i, l := range Languages {
		if strings.EqualFold(l, lang) {
			return Languages[(i+1)%len(Languages)]
		}
	}

	return LanguageAll
}

// NormalizeLanguage maps lang onto its canonical spelling in Languages.
// Unknown languages are passed through so callers may ask for anything.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return LanguageAll
	}

	for _, l := range Languages {
		if strings.EqualFold(l, lang) {
			return l
		}
	}

	return lang
}
