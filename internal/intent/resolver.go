package intent

import (
	"time"

	"github.com/daniel5812/brain-dump-server/internal/nlp"
)

// untitledFallback is used when the extractor produced no title at all.
const untitledFallback = "ללא כותרת"

// meetingDuration is the default meeting length when no explicit end exists.
const meetingDuration = 60 * time.Minute

// endOfDay is the due time attached to tasks that carry only a date.
var endOfDay = nlp.Time{Hour: 23, Minute: 59, Confidence: 1}

// Resolve turns a raw extractor hypothesis into a definite intent, running
// the date/time resolvers over the free-text expression when the extractor
// did not supply absolute timestamps.
//
// The decision table:
//   - idea: always resolves — no scheduling information needed.
//   - meeting with an explicit start: trusted verbatim, end defaults to
//     start + 60 minutes.
//   - task with an explicit due: trusted verbatim.
//   - meeting from text: needs both a date and a time; whichever is absent
//     becomes the [Unclear] reason.
//   - task from text: a date yields a 23:59 deadline; no date is still a
//     valid task without one.
//   - anything else: [Unclear] with [UnknownType].
//
// now anchors relative-date math and carries the working timezone.
func Resolve(raw Raw, now time.Time) Resolved {
	title := raw.Title
	if title == "" {
		title = untitledFallback
	}

	if raw.Hypothesis == HypothesisIdea {
		return Idea{Title: title, Confidence: raw.Confidence}
	}

	if raw.Hypothesis == HypothesisMeeting && raw.Start != "" {
		end := raw.End
		if end == "" {
			end = addMinutes(raw.Start, meetingDuration, now.Location())
		}
		return Meeting{Title: title, Start: raw.Start, End: end, Confidence: raw.Confidence}
	}

	if raw.Hypothesis == HypothesisTask && raw.Due != "" {
		return Task{Title: title, Due: raw.Due, Confidence: raw.Confidence}
	}

	textSource := raw.RelativeTime
	if textSource == "" {
		textSource = raw.Title
	}
	textSource = nlp.Correct(textSource)

	date, hasDate := nlp.ResolveDate(textSource, now)
	tod := nlp.ResolveTime(textSource)

	switch raw.Hypothesis {
	case HypothesisMeeting:
		switch {
		case !hasDate && !tod.Resolved():
			return Unclear{Title: title, Confidence: raw.Confidence, Reason: MissingBoth}
		case !hasDate:
			return Unclear{Title: title, Confidence: raw.Confidence, Reason: MissingDate}
		case !tod.Resolved():
			return Unclear{Title: title, Confidence: raw.Confidence, Reason: MissingTime}
		}

		start, ok := nlp.BuildDateTime(date, tod)
		if !ok {
			return Unclear{Title: title, Confidence: raw.Confidence, Reason: MissingBoth}
		}
		return Meeting{
			Title:      title,
			Start:      start,
			End:        addMinutes(start, meetingDuration, now.Location()),
			Confidence: raw.Confidence,
		}

	case HypothesisTask:
		if hasDate {
			due, _ := nlp.BuildDateTime(date, endOfDay)
			return Task{Title: title, Due: due, Confidence: raw.Confidence}
		}
		return Task{Title: title, Confidence: raw.Confidence}
	}

	return Unclear{Title: title, Confidence: raw.Confidence, Reason: UnknownType}
}

// isoLayouts are the timestamp shapes the extractor is allowed to emit.
var isoLayouts = []string{nlp.ISOLayout, "2006-01-02T15:04", nlp.DateLayout}

// addMinutes shifts a local ISO timestamp forward by d. An unparsable input
// is returned unchanged — the caller's safety nets handle it downstream.
func addMinutes(iso string, d time.Duration, loc *time.Location) string {
	for _, layout := range isoLayouts {
		t, err := time.ParseInLocation(layout, iso, loc)
		if err != nil {
			continue
		}
		return t.Add(d).Format(nlp.ISOLayout)
	}
	return iso
}
