// Package nlp implements voice-first Hebrew text analysis for the brain-dump
// pipeline: utterance normalisation, free-text date and time-of-day
// resolution, and transcription-noise keyword correction.
//
// The date/time resolvers are deterministic rule tables evaluated in a fixed
// priority order. They are deliberately not "smart": downstream behaviour
// (which clarifying question to ask, when a follow-up completes) depends on
// the exact tie-break order, so the rules must stay stable and inspectable.
package nlp

import (
	"regexp"
	"strings"
)

var (
	// Hebrew cantillation and vowel marks (niqqud), U+0591–U+05C7.
	niqqudRE = regexp.MustCompile("[\u0591-\u05c7]")

	// Comma and the Hebrew maqaf both act as soft separators in speech
	// transcripts.
	separatorRE = regexp.MustCompile("[,\u05be]")

	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Normalize prepares a raw utterance for parsing: lower-cases it, strips
// niqqud, replaces comma and Hebrew maqaf with spaces, collapses runs of
// whitespace and trims the result. It is total — any input yields a valid
// (possibly empty) output.
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = niqqudRE.ReplaceAllString(s, "")
	s = separatorRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripWords removes exact whole-word occurrences of the given words from s.
// Used to drop filler tokens ("ביום", "הקרוב") that carry no date information
// but would otherwise shadow keyword matches.
func stripWords(s string, words ...string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		drop := false
		for _, w := range words {
			if f == w {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
