package nlp

import (
	"slices"
	"unicode/utf8"
)

// keyword pairs a Hebrew word or phrase with its numeric value (weekday index,
// month number, hour, or day of month depending on the table).
type keyword struct {
	word  string
	value int
}

// weekdays maps Hebrew weekday names to time.Weekday indices (Sunday = 0).
// Scanned in this order; "שבת" has no common short alias so plain substring
// matching is sufficient.
var weekdays = []keyword{
	{"ראשון", 0},
	{"שני", 1},
	{"שלישי", 2},
	{"רביעי", 3},
	{"חמישי", 4},
	{"שישי", 5},
	{"שבת", 6},
}

// months maps Hebrew month names to 1-based month numbers.
var months = []keyword{
	{"ינואר", 1},
	{"פברואר", 2},
	{"מרץ", 3},
	{"אפריל", 4},
	{"מאי", 5},
	{"יוני", 6},
	{"יולי", 7},
	{"אוגוסט", 8},
	{"ספטמבר", 9},
	{"אוקטובר", 10},
	{"נובמבר", 11},
	{"דצמבר", 12},
}

// hourWords maps spoken Hebrew hour words to clock hours (1–12). Multi-word
// forms ("אחת עשרה") must be tested before their single-word prefixes, which
// sortLongestFirst guarantees.
var hourWords = []keyword{
	{"אחת", 1},
	{"אחד", 1},
	{"שתיים", 2},
	{"שניים", 2},
	{"שלוש", 3},
	{"ארבע", 4},
	{"חמש", 5},
	{"שש", 6},
	{"שבע", 7},
	{"שמונה", 8},
	{"תשע", 9},
	{"עשר", 10},
	{"אחת עשרה", 11},
	{"אחתעשרה", 11},
	{"שתים עשרה", 12},
	{"שתיםעשרה", 12},
	{"שתיים עשרה", 12},
	{"שתייםעשרה", 12},
}

// dayOrdinals maps spelled-out Hebrew ordinals and cardinal forms to a day of
// month (1–31). Like hourWords, matching is longest-candidate-first so
// "שלושה עשר" (13) is never shadowed by "שלושה" (3).
var dayOrdinals = []keyword{
	{"ראשון", 1}, {"הראשון", 1}, {"אחד", 1}, {"אחת", 1},
	{"שני", 2}, {"השני", 2}, {"שניים", 2}, {"שתיים", 2},
	{"שלישי", 3}, {"השלישי", 3}, {"שלושה", 3}, {"שלוש", 3},
	{"רביעי", 4}, {"הרביעי", 4}, {"ארבעה", 4}, {"ארבע", 4},
	{"חמישי", 5}, {"החמישי", 5}, {"חמישה", 5}, {"חמש", 5},
	{"שישי", 6}, {"השישי", 6}, {"שישה", 6}, {"שש", 6},
	{"שביעי", 7}, {"השביעי", 7}, {"שבעה", 7}, {"שבע", 7},
	{"שמיני", 8}, {"השמיני", 8}, {"שמונה", 8},
	{"תשיעי", 9}, {"התשיעי", 9}, {"תשעה", 9}, {"תשע", 9},
	{"עשירי", 10}, {"העשירי", 10}, {"עשרה", 10}, {"עשר", 10},
	{"אחד עשר", 11}, {"אחת עשרה", 11},
	{"שנים עשר", 12}, {"שתים עשרה", 12},
	{"שלושה עשר", 13}, {"שלוש עשרה", 13},
	{"ארבעה עשר", 14}, {"ארבע עשרה", 14},
	{"חמישה עשר", 15}, {"חמש עשרה", 15},
	{"שישה עשר", 16}, {"שש עשרה", 16},
	{"שבעה עשר", 17}, {"שבע עשרה", 17},
	{"שמונה עשר", 18}, {"שמונה עשרה", 18},
	{"תשעה עשר", 19}, {"תשע עשרה", 19},
	{"עשרים", 20},
	{"עשרים ואחד", 21}, {"עשרים ואחת", 21},
	{"עשרים ושניים", 22}, {"עשרים ושתיים", 22},
	{"עשרים ושלושה", 23}, {"עשרים ושלוש", 23},
	{"עשרים וארבעה", 24}, {"עשרים וארבע", 24},
	{"עשרים וחמישה", 25}, {"עשרים וחמש", 25},
	{"עשרים ושישה", 26}, {"עשרים ושש", 26},
	{"עשרים ושבעה", 27}, {"עשרים ושבע", 27},
	{"עשרים ושמונה", 28},
	{"עשרים ותשעה", 29}, {"עשרים ותשע", 29},
	{"שלושים", 30},
	{"שלושים ואחד", 31}, {"שלושים ואחת", 31},
}

func init() {
	sortLongestFirst(hourWords)
	sortLongestFirst(dayOrdinals)
}

// sortLongestFirst orders a keyword table by descending rune length, keeping
// the declared order among equal-length entries. Substring matching over the
// sorted table then always prefers the most specific phrase.
func sortLongestFirst(kws []keyword) {
	slices.SortStableFunc(kws, func(a, b keyword) int {
		return utf8.RuneCountInString(b.word) - utf8.RuneCountInString(a.word)
	})
}
