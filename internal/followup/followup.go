// Package followup implements the multi-turn slot-filling conversation: when
// a turn resolves as unclear, a pending record remembers what is already known
// (intent type, title, partial date or time) and what is still missing, and
// each subsequent reply from the user fills slots until the intent can be
// executed.
//
// The state machine is small: DATE_TIME_RANGE (nothing known) narrows to TIME
// or DATE once one slot fills, and a turn that completes both slots is
// terminal. Already-captured slots are authoritative — a later reply never
// overwrites them with a weaker re-parse.
package followup

import (
	"time"

	"github.com/daniel5812/brain-dump-server/internal/intent"
)

// TimeOfDay is a captured wall-clock time slot.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// Pending is the saved, partially-resolved state of one user's follow-up
// conversation. At most one pending record exists per user; opening a new
// follow-up replaces any previous one.
type Pending struct {
	// IntentType is the original hypothesis the follow-up is completing,
	// either [intent.HypothesisTask] or [intent.HypothesisMeeting].
	IntentType intent.Hypothesis

	// Title is the subject captured from the original utterance.
	Title string

	// Missing is the slot the conversation is currently waiting on.
	Missing intent.Missing

	// Date is the captured calendar date (YYYY-MM-DD), empty until known.
	// It is a plain date string on purpose, decoupled from timezone math
	// until the terminal timestamp is built.
	Date string

	// StartTime and EndTime are the captured time slots, nil until known.
	StartTime *TimeOfDay
	EndTime   *TimeOfDay

	// RawTimeExpression preserves the original free-text time phrase so
	// later replies can be interpreted together with it.
	RawTimeExpression string

	// CreatedAt is when the follow-up was opened, used for expiry.
	CreatedAt time.Time
}
