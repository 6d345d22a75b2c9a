// Package intent defines the contract between the language-model signal
// extractor and the decision layer: the raw hypothesis produced once per user
// turn, and the definite resolved intent derived from it.
//
// Resolution is a pure function. Business-level ambiguity is never an error —
// it resolves to [Unclear] with a reason describing what is missing, and the
// decision layer turns that into a clarifying question.
package intent

// Hypothesis is the upstream model's classification of an utterance. It is a
// proposal, not a verdict — resolution may still flag the turn as unclear.
type Hypothesis string

const (
	HypothesisTask    Hypothesis = "task"
	HypothesisMeeting Hypothesis = "meeting"
	HypothesisIdea    Hypothesis = "idea"
)

// IsValid reports whether h is a recognised hypothesis.
func (h Hypothesis) IsValid() bool {
	switch h {
	case HypothesisTask, HypothesisMeeting, HypothesisIdea:
		return true
	}
	return false
}

// Signals are boolean hints the extractor derived from the utterance,
// indicating whether a date, a time, or a full time range was explicitly
// present.
type Signals struct {
	HasDate      bool `json:"hasDate"`
	HasTime      bool `json:"hasTime"`
	HasTimeRange bool `json:"hasTimeRange"`
}

// Raw is the only format the extractor is allowed to return. It is immutable
// once received; every change of interpretation happens in [Resolve] and the
// layers above it.
type Raw struct {
	// Hypothesis is the model's proposed intent type.
	Hypothesis Hypothesis `json:"hypothesis"`

	// Title is a short label for the action, e.g. "פגישה עם דוד".
	Title string `json:"title"`

	// Start is an absolute ISO start timestamp, set only when the user said
	// an explicit calendar date. Trusted verbatim when present.
	Start string `json:"start,omitempty"`

	// End is an absolute ISO end timestamp, if the model extracted one.
	End string `json:"end,omitempty"`

	// Due is a task deadline (YYYY-MM-DD or ISO), trusted verbatim when present.
	Due string `json:"due,omitempty"`

	// RelativeTime carries the original free-text time expression as spoken
	// ("מחר מ-10 עד 11", "ביום ראשון בצהריים").
	RelativeTime string `json:"relativeTime,omitempty"`

	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Signals are the extractor's date/time presence hints.
	Signals Signals `json:"signals"`
}

// UnclearReason says which required information kept a turn from resolving.
type UnclearReason string

const (
	MissingDate UnclearReason = "MISSING_DATE"
	MissingTime UnclearReason = "MISSING_TIME"
	MissingBoth UnclearReason = "MISSING_BOTH"
	UnknownType UnclearReason = "UNKNOWN_TYPE"
)

// Missing identifies the slot a pending follow-up is waiting on.
type Missing string

const (
	// NeedDate means the time of day is known but the calendar date is not.
	NeedDate Missing = "DATE"

	// NeedTime means the calendar date is known but the time of day is not.
	NeedTime Missing = "TIME"

	// NeedDateTime means neither slot is known yet.
	NeedDateTime Missing = "DATE_TIME_RANGE"
)

// Resolved is the definite outcome of intent resolution: exactly one of
// [Task], [Meeting], [Idea] or [Unclear]. The type set is closed; consumers
// dispatch with a type switch and treat any unknown variant as a safety-net
// fallback.
type Resolved interface {
	resolvedIntent()
}

// Task is an actionable to-do, with an optional deadline. Tasks never require
// a time of day — only an optional date.
type Task struct {
	Title      string
	Due        string // ISO timestamp; empty means no deadline
	Confidence float64
}

// Meeting is a calendar event with a definite start and end. Both timestamps
// are always fully formed — partial timestamps never escape resolution.
type Meeting struct {
	Title      string
	Start      string
	End        string
	Confidence float64
}

// Idea is a thought to capture; it needs no scheduling information.
type Idea struct {
	Title      string
	Confidence float64
}

// Unclear marks a turn that cannot complete without more information from the
// user.
type Unclear struct {
	Title      string
	Confidence float64
	Reason     UnclearReason
}

func (Task) resolvedIntent()    {}
func (Meeting) resolvedIntent() {}
func (Idea) resolvedIntent()    {}
func (Unclear) resolvedIntent() {}
