package nlp

import (
	"testing"
	"time"
)

func TestCorrectorRepairsNearMisses(t *testing.T) {
	t.Parallel()

	c := NewCorrector()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"doubled letter", "מחרר בשש", "מחר בשש"},
		{"doubled letter in clue", "בשש בעערב", "בשש בערב"},
		{"exact keywords untouched", "מחר בשש בערב", "מחר בשש בערב"},
		{"unrelated words untouched", "לקנות מתנה לאמא", "לקנות מתנה לאמא"},
		{"numeric tokens untouched", "בשעה 18:00", "בשעה 18:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Correct(tt.in); got != tt.want {
				t.Fatalf("Correct(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCorrectorFeedsResolvers(t *testing.T) {
	t.Parallel()

	c := NewCorrector()
	corrected := c.Correct("מחררתיים בשעהה 10")

	d, ok := ResolveDate(corrected, testNow)
	if !ok {
		t.Fatalf("ResolveDate(%q): no match after correction", corrected)
	}
	if want := date(2026, time.January, 23); !d.Equal(want) {
		t.Fatalf("ResolveDate = %v, want %v", d, want)
	}

	tm := ResolveTime(corrected)
	if !tm.Resolved() || tm.Hour != 10 {
		t.Fatalf("ResolveTime(%q) = %+v, want hour 10", corrected, tm)
	}
}

func TestCorrectorShortTokensPassThrough(t *testing.T) {
	t.Parallel()

	c := NewCorrector()
	// Three runes — below the correction threshold even though "מחר" is a
	// keyword one edit away.
	if got := c.Correct("מהר"); got != "מהר" {
		t.Fatalf("Correct = %q, want short token untouched", got)
	}
}
