// Package decision is the policy layer between intent resolution and
// execution: it turns the extractor's raw hypothesis into an ordered action
// plan, opening a follow-up conversation whenever required scheduling
// information is missing.
//
// Every turn produces a well-formed plan. Ambiguity is answered with a
// clarifying question, never an error.
package decision

import (
	"time"

	"github.com/daniel5812/brain-dump-server/internal/action"
	"github.com/daniel5812/brain-dump-server/internal/intent"
	"github.com/daniel5812/brain-dump-server/internal/messages"
)

// Engine translates raw intents into action plans.
type Engine struct {
	now func() time.Time
}

// Option configures an [Engine].
type Option func(*Engine)

// WithClock overrides the wall clock used to anchor relative-date resolution.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an [Engine] using the real wall clock unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide resolves raw and maps the outcome to a plan:
// task, meeting and idea intents become their terminal action plus a
// confirmation message; an unclear intent becomes a follow-up request carrying
// the clarifying question for whatever slot is missing.
func (e *Engine) Decide(raw intent.Raw) action.Plan {
	switch resolved := intent.Resolve(raw, e.now()).(type) {
	case intent.Task:
		return action.Plan{Actions: []action.Action{
			action.CreateTask{Title: resolved.Title, Due: resolved.Due},
			action.SendMessage{Message: messages.TaskCreated(resolved.Title, resolved.Due)},
		}}

	case intent.Meeting:
		return action.Plan{Actions: []action.Action{
			action.CreateMeeting{Title: resolved.Title, Start: resolved.Start, End: resolved.End},
			action.SendMessage{Message: messages.MeetingScheduled(resolved.Title)},
		}}

	case intent.Idea:
		return action.Plan{Actions: []action.Action{
			action.SaveIdea{Title: resolved.Title},
			action.SendMessage{Message: messages.IdeaSaved(resolved.Title)},
		}}

	case intent.Unclear:
		return action.Plan{Actions: []action.Action{e.followupFor(raw, resolved)}}
	}

	return action.Plan{Actions: []action.Action{
		action.SendMessage{Message: messages.Misunderstood},
	}}
}

// followupFor shapes the follow-up request for an unclear turn. Only tasks
// and meetings can be completed by slot-filling, so anything else falls back
// to a task hypothesis and the generic question.
func (e *Engine) followupFor(raw intent.Raw, u intent.Unclear) action.RequestFollowup {
	intentType := raw.Hypothesis
	if intentType != intent.HypothesisTask && intentType != intent.HypothesisMeeting {
		intentType = intent.HypothesisTask
	}

	context := raw.RelativeTime
	if context == "" {
		context = raw.Title
	}

	var missing intent.Missing
	switch u.Reason {
	case intent.MissingDate:
		missing = intent.NeedDate
	case intent.MissingTime:
		missing = intent.NeedTime
	default:
		missing = intent.NeedDateTime
	}

	return action.RequestFollowup{
		IntentType: intentType,
		Title:      u.Title,
		Missing:    missing,
		Context:    context,
		Question:   messages.QuestionFor(missing),
	}
}
