package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the local ISO-8601 timestamp layout exchanged with the action
// executor and its collaborators. The system runs in a single configured
// timezone, so no offset is rendered.
const ISOLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar-date layout used for persisted partial dates.
const DateLayout = "2006-01-02"

// Confidence levels assigned by ResolveTime depending on which rule matched.
const (
	confidenceColon    = 0.95
	confidenceBareHour = 0.9
	confidenceHourWord = 0.9
)

var (
	inDaysRE          = regexp.MustCompile(`(?:עוד|בעוד)\s*(\d{1,2})\s*ימים`)
	isoDateRE         = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericYearDateRE = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)
	numericDateRE     = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})\b`)
	bareNumberRE      = regexp.MustCompile(`\b(\d{1,2})\b`)
	colonTimeRE       = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

	// anyNumericDateRE detects a numeric date pattern with or without a year.
	// Used by the time-resolver guard so a date's day-of-month is not misread
	// as an hour.
	anyNumericDateRE = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}(?:[/.\-]\d{2,4})?\b`)

	// hourWordClueRE matches "ב" + a spoken hour word ("באחת", "בשש"…) as a
	// whole token. Go's \b is ASCII-only, so token edges are matched
	// explicitly.
	hourWordClueRE = regexp.MustCompile(`(?:^|\s)ב(אחת עשרה|שתים עשרה|אחת|אחד|שתיים|שניים|שלוש|ארבע|חמש|שש|שבע|שמונה|תשע|עשר)(?:\s|$)`)
)

// Time is the result of resolving a time-of-day from free text. A Confidence
// of zero means no time was found and Hour/Minute are meaningless.
type Time struct {
	Hour       int
	Minute     int
	Confidence float64
}

// Resolved reports whether a time-of-day was actually found.
func (t Time) Resolved() bool {
	return t.Confidence > 0
}

// startOfDay truncates t to local midnight in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the next occurrence of target strictly after from —
// if today already is the target weekday, the result is seven days out,
// never today.
func nextWeekday(target time.Weekday, from time.Time) time.Time {
	day := startOfDay(from)
	diff := int(target) - int(day.Weekday())
	if diff <= 0 {
		diff += 7
	}
	return day.AddDate(0, 0, diff)
}

// ResolveDate extracts a calendar date from free Hebrew/numeric text. Rules
// are tried in strict priority order; the first match wins:
//
//  1. Relative words: היום, מחרתיים, מחר.
//  2. "עוד/בעוד N ימים".
//  3. Week phrases: עוד שבועיים (+14), עוד שבוע / שבוע הבא (+7).
//  4. ISO date YYYY-MM-DD.
//  5. Numeric date with year D/M/Y (2-digit years expand to 2000+Y).
//  6. Numeric date without year D/M; dates already passed roll to next year.
//  7. Hebrew month name + day (numeral or spelled-out ordinal); passed dates
//     roll to next year.
//  8. Weekday name — only when no month name matched, so "ראשון" is read as
//     Sunday rather than ordinal day 1.
//
// The returned date is normalised to midnight in now's location. The boolean
// is false when no rule matched.
func ResolveDate(text string, now time.Time) (time.Time, bool) {
	clean := stripWords(Normalize(text), "ביום", "הקרוב")

	// Relative dates. מחרתיים must be tested before מחר, its substring.
	switch {
	case strings.Contains(clean, "היום"):
		return startOfDay(now), true
	case strings.Contains(clean, "מחרתיים"):
		return startOfDay(now).AddDate(0, 0, 2), true
	case strings.Contains(clean, "מחר"):
		return startOfDay(now).AddDate(0, 0, 1), true
	}

	if m := inDaysRE.FindStringSubmatch(clean); m != nil {
		n, _ := strconv.Atoi(m[1])
		return startOfDay(now).AddDate(0, 0, n), true
	}

	switch {
	case strings.Contains(clean, "עוד שבועיים") || strings.Contains(clean, "בעוד שבועיים"):
		return startOfDay(now).AddDate(0, 0, 14), true
	case strings.Contains(clean, "עוד שבוע") || strings.Contains(clean, "בעוד שבוע") ||
		strings.Contains(clean, "שבוע הבא"):
		return startOfDay(now).AddDate(0, 0, 7), true
	}

	// "הבא" is only meaningful for the week phrases above; once those are
	// done it is filler ("ביום ראשון הבא").
	clean = stripWords(clean, "הבא")

	if m := isoDateRE.FindStringSubmatch(clean); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), true
	}

	if m := numericYearDateRE.FindStringSubmatch(clean); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), true
		}
	}

	if m := numericDateRE.FindStringSubmatch(clean); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			d := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
			if d.Before(startOfDay(now)) {
				d = d.AddDate(1, 0, 0)
			}
			return d, true
		}
	}

	// Hebrew month name + day of month.
	monthNum := 0
	for _, m := range months {
		if strings.Contains(clean, m.word) {
			monthNum = m.value
			break
		}
	}
	if monthNum != 0 {
		day := 0
		if m := bareNumberRE.FindStringSubmatch(clean); m != nil {
			day, _ = strconv.Atoi(m[1])
		}
		if day == 0 {
			for _, o := range dayOrdinals {
				if strings.Contains(clean, o.word) {
					day = o.value
					break
				}
			}
		}
		if day >= 1 && day <= 31 {
			d := time.Date(now.Year(), time.Month(monthNum), day, 0, 0, 0, 0, now.Location())
			if d.Before(startOfDay(now)) {
				d = d.AddDate(1, 0, 0)
			}
			return d, true
		}
	}

	// Weekday names — skipped when a month name was present to avoid the
	// ordinal/weekday collision ("ראשון" as day 1 vs Sunday).
	if monthNum == 0 {
		for _, w := range weekdays {
			if strings.Contains(clean, w.word) {
				return nextWeekday(time.Weekday(w.value), now), true
			}
		}
	}

	return time.Time{}, false
}

// hasTimeClues reports whether the normalised text contains any signal that a
// number (or hour word) should be read as a time of day.
func hasTimeClues(s string) bool {
	if strings.Contains(s, ":") {
		return true
	}
	for _, clue := range []string{
		"שעה", "בבוקר", "בערב", "בצהריים", "בלילה", "וחצי", "ורבע", "רבע ל",
	} {
		if strings.Contains(s, clue) {
			return true
		}
	}
	return hourWordClueRE.MatchString(s)
}

// ResolveTime extracts a time-of-day from free Hebrew text.
//
// A guard runs first: when the text contains a bare numeric date pattern and
// no time clue, the resolver reports nothing rather than misreading the
// day-of-month as an hour ("1.2" is February 1st, not 01:00).
//
// Matching order: colon-delimited HH:MM; a bare 0–23 number (only when time
// clues are present); a spoken Hebrew hour word. Minute modifiers (וחצי →
// :30, ורבע → :15, רבע ל → previous hour :45) and time-of-day adjustment
// (afternoon/evening/night add 12 to hours below 12; morning turns 12 into 0)
// are applied afterwards.
func ResolveTime(text string) Time {
	lower := Normalize(text)

	clues := hasTimeClues(lower)
	if anyNumericDateRE.MatchString(lower) && !clues {
		return Time{}
	}

	var result Time
	haveHour := false

	if m := colonTimeRE.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			result = Time{Hour: hour, Minute: minute, Confidence: confidenceColon}
			haveHour = true
		}
	}

	if !haveHour && clues {
		if m := bareNumberRE.FindStringSubmatch(lower); m != nil {
			if n, _ := strconv.Atoi(m[1]); n <= 23 {
				result = Time{Hour: n, Confidence: confidenceBareHour}
				haveHour = true
			}
		}
	}

	if !haveHour {
		for _, hw := range hourWords {
			if strings.Contains(lower, hw.word) {
				result = Time{Hour: hw.value, Confidence: confidenceHourWord}
				haveHour = true
				break
			}
		}
	}

	if !haveHour {
		return Time{}
	}

	switch {
	case strings.Contains(lower, "וחצי"):
		result.Minute = 30
	case strings.Contains(lower, "ורבע"):
		result.Minute = 15
	case strings.Contains(lower, "רבע ל"):
		result.Hour = (result.Hour + 23) % 24
		result.Minute = 45
	}

	if result.Hour < 12 &&
		(strings.Contains(lower, "בערב") || strings.Contains(lower, "בלילה") || strings.Contains(lower, "בצהריים")) {
		result.Hour += 12
	}
	if result.Hour == 12 && strings.Contains(lower, "בבוקר") {
		result.Hour = 0
	}

	return result
}

// BuildDateTime combines a resolved calendar date with a resolved time-of-day
// into a local ISO timestamp (seconds zeroed). It reports false when no hour
// was resolved — partial timestamps never escape this layer.
func BuildDateTime(date time.Time, t Time) (string, bool) {
	if !t.Resolved() {
		return "", false
	}
	combined := time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
	return combined.Format(ISOLayout), true
}
