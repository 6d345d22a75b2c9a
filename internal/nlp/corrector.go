package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// defaultMaxDistance is the edit-distance budget for a correction. One edit
// covers the common speech-to-text slips (doubled letter, dropped letter,
// adjacent swap) without letting unrelated words collapse into keywords.
const defaultMaxDistance = 1

// minCorrectableRunes guards very short tokens: with only two or three runes
// a single edit reaches too many unrelated words.
const minCorrectableRunes = 4

// CorrectorOption is a functional option for configuring a [Corrector].
type CorrectorOption func(*Corrector)

// WithMaxDistance sets the maximum Damerau-Levenshtein distance at which a
// token is snapped to a known keyword. Default: 1.
func WithMaxDistance(d int) CorrectorOption {
	return func(c *Corrector) {
		c.maxDistance = d
	}
}

// Corrector repairs near-miss date/time keywords in voice transcripts before
// they reach the resolvers, e.g. "מחרר" → "מחר" or "בעערב" → "בערב".
// Exact keyword hits and numeric tokens are never touched, and tokens that
// are not close to any keyword pass through unchanged.
//
// Corrector is read-only after construction and safe for concurrent use.
type Corrector struct {
	vocab       []string
	maxDistance int
}

// NewCorrector builds a [Corrector] over the resolver keyword tables
// (weekdays, month names, hour words, relative-date words, and time clues).
func NewCorrector(opts ...CorrectorOption) *Corrector {
	c := &Corrector{
		vocab:       correctionVocabulary(),
		maxDistance: defaultMaxDistance,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// defaultCorrector backs the package-level [Correct].
var defaultCorrector = NewCorrector()

// Correct repairs text with the default [Corrector]. The resolvers' callers
// run every free-text time expression through this before parsing it.
func Correct(text string) string {
	return defaultCorrector.Correct(text)
}

// Correct returns text with near-miss keyword tokens replaced by their
// canonical spelling. The input is normalised first, so the output is safe to
// feed straight into [ResolveDate] and [ResolveTime].
func (c *Corrector) Correct(text string) string {
	fields := strings.Fields(Normalize(text))
	for i, f := range fields {
		fields[i] = c.correctToken(f)
	}
	return strings.Join(fields, " ")
}

// correctToken snaps a single token to the closest vocabulary word within the
// distance budget, preferring the earliest vocabulary entry on ties.
func (c *Corrector) correctToken(token string) string {
	if utf8.RuneCountInString(token) < minCorrectableRunes || hasDigit(token) {
		return token
	}

	best := token
	bestDist := c.maxDistance + 1
	for _, w := range c.vocab {
		if token == w {
			return token
		}
		if d := matchr.DamerauLevenshtein(token, w); d < bestDist {
			best = w
			bestDist = d
		}
	}
	return best
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// correctionVocabulary collects every keyword the resolvers match on,
// including the "ב"-prefixed forms that appear in spoken replies.
func correctionVocabulary() []string {
	var vocab []string
	seen := make(map[string]bool)

	add := func(words ...string) {
		for _, w := range words {
			if !seen[w] {
				seen[w] = true
				vocab = append(vocab, w)
			}
		}
	}

	add("היום", "מחר", "מחרתיים", "שבוע", "שבועיים", "עוד", "בעוד", "ימים")
	add("שעה", "בשעה", "בבוקר", "בערב", "בצהריים", "בלילה", "וחצי", "ורבע", "רבע")
	add("ביום", "הקרוב", "הבא")
	for _, kw := range weekdays {
		add(kw.word)
	}
	for _, kw := range months {
		add(kw.word, "ב"+kw.word, "ל"+kw.word)
	}
	for _, kw := range hourWords {
		if !strings.Contains(kw.word, " ") {
			add(kw.word, "ב"+kw.word)
		}
	}
	return vocab
}
