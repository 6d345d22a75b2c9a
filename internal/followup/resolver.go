package followup

import (
	"time"

	"github.com/daniel5812/brain-dump-server/internal/action"
	"github.com/daniel5812/brain-dump-server/internal/intent"
	"github.com/daniel5812/brain-dump-server/internal/messages"
	"github.com/daniel5812/brain-dump-server/internal/nlp"
)

// meetingDuration is the meeting length used when no explicit end time was
// captured.
const meetingDuration = 60 * time.Minute

// Resolve advances the slot-filling conversation by one user reply.
//
// The reply is interpreted together with the originally spoken time phrase,
// but slots that were captured on an earlier turn stay authoritative and are
// never overwritten by a re-parse. Once both a date and a time are known the
// returned plan is terminal (create meeting or task plus a confirmation);
// otherwise it carries the next clarifying question and the returned pending
// record reflects whatever slot this turn managed to fill.
//
// Persistence is the caller's job: store the returned pending record when the
// plan is not terminal, delete it when it is. A malformed stored date is
// treated as absent and asked for again.
func Resolve(p Pending, reply string, now time.Time) (action.Plan, Pending) {
	combined := nlp.Correct(p.RawTimeExpression + " " + reply)

	updated := p

	var date time.Time
	haveDate := false
	if p.Date != "" {
		if d, err := time.ParseInLocation(nlp.DateLayout, p.Date, now.Location()); err == nil {
			date, haveDate = d, true
		} else {
			updated.Date = ""
		}
	}
	if !haveDate {
		if d, ok := nlp.ResolveDate(combined, now); ok {
			date, haveDate = d, true
			updated.Date = d.Format(nlp.DateLayout)
		}
	}

	if updated.StartTime == nil {
		if tod := nlp.ResolveTime(combined); tod.Resolved() {
			updated.StartTime = &TimeOfDay{Hour: tod.Hour, Minute: tod.Minute}
		}
	}

	if haveDate && updated.StartTime != nil {
		return terminalPlan(updated, date), updated
	}

	switch {
	case haveDate:
		updated.Missing = intent.NeedTime
	case updated.StartTime != nil:
		updated.Missing = intent.NeedDate
	}

	question := messages.QuestionFor(updated.Missing)
	if p.Missing == intent.NeedDate && updated.Missing == intent.NeedDate {
		question = messages.DateRetry
	}
	plan := action.Plan{Actions: []action.Action{action.SendMessage{Message: question}}}
	return plan, updated
}

// terminalPlan builds the final timestamp from the filled slots and emits the
// intent's terminal action with its confirmation message.
func terminalPlan(p Pending, date time.Time) action.Plan {
	start := time.Date(date.Year(), date.Month(), date.Day(),
		p.StartTime.Hour, p.StartTime.Minute, 0, 0, date.Location())
	startISO := start.Format(nlp.ISOLayout)

	if p.IntentType == intent.HypothesisMeeting {
		end := start.Add(meetingDuration)
		if p.EndTime != nil {
			end = time.Date(date.Year(), date.Month(), date.Day(),
				p.EndTime.Hour, p.EndTime.Minute, 0, 0, date.Location())
		}
		return action.Plan{Actions: []action.Action{
			action.CreateMeeting{Title: p.Title, Start: startISO, End: end.Format(nlp.ISOLayout)},
			action.SendMessage{Message: messages.MeetingScheduled(p.Title)},
		}}
	}

	return action.Plan{Actions: []action.Action{
		action.CreateTask{Title: p.Title, Due: startISO},
		action.SendMessage{Message: messages.TaskCreated(p.Title, startISO)},
	}}
}
