// Package executor carries out action plans against the external
// collaborators: Todoist for tasks, Google Calendar for meetings, WhatsApp
// for replies, and the pending-followup store for clarification requests.
//
// Actions run sequentially in plan order; the first failure stops the plan so
// a confirmation is never sent for work that did not happen. A missing
// integration is answered with onboarding instructions before the error is
// surfaced.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/action"
	"github.com/daniel5812/brain-dump-server/internal/calendar"
	"github.com/daniel5812/brain-dump-server/internal/followup"
	"github.com/daniel5812/brain-dump-server/internal/messages"
	"github.com/daniel5812/brain-dump-server/internal/messaging"
	"github.com/daniel5812/brain-dump-server/internal/observe"
	"github.com/daniel5812/brain-dump-server/internal/tasks"
)

// Executor runs action plans for one user turn at a time.
type Executor struct {
	sender   messaging.Sender
	tasks    tasks.Creator
	calendar calendar.EventCreator
	pending  followup.Store
	log      *slog.Logger
	metrics  *observe.Metrics
	now      func() time.Time
}

// Option configures an [Executor].
type Option func(*Executor)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// WithClock overrides the wall clock stamped on new pending follow-ups.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// WithMetrics overrides the package-default metrics instance.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// New constructs an [Executor] over the given collaborators.
func New(sender messaging.Sender, taskCreator tasks.Creator, eventCreator calendar.EventCreator, pending followup.Store, opts ...Option) *Executor {
	e := &Executor{
		sender:   sender,
		tasks:    taskCreator,
		calendar: eventCreator,
		pending:  pending,
		log:      slog.Default(),
		metrics:  observe.DefaultMetrics(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every action of plan in order on behalf of userID, stopping at
// the first failure.
func (e *Executor) Execute(ctx context.Context, userID string, plan action.Plan) error {
	for _, a := range plan.Actions {
		if err := e.executeOne(ctx, userID, a); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) executeOne(ctx context.Context, userID string, a action.Action) error {
	switch a := a.(type) {
	case action.CreateTask:
		err := e.tasks.Create(ctx, userID, a.Title, a.Due)
		e.metrics.RecordIntegrationRequest(ctx, "todoist", statusOf(err))
		if errors.Is(err, tasks.ErrNotConfigured) {
			return e.onboard(ctx, userID, messages.TodoistNotConfigured, err)
		}
		return err

	case action.CreateMeeting:
		err := e.calendar.CreateEvent(ctx, userID, a.Title, a.Start, a.End)
		e.metrics.RecordIntegrationRequest(ctx, "calendar", statusOf(err))
		if errors.Is(err, calendar.ErrNotConfigured) {
			return e.onboard(ctx, userID, messages.CalendarNotConfigured, err)
		}
		return err

	case action.SaveIdea:
		// No idea persistence yet; the plan's confirmation message is the
		// user-visible record.
		e.log.Info("idea captured", "user", userID, "title", a.Title)
		return nil

	case action.SendMessage:
		return e.send(ctx, userID, a.Message)

	case action.RequestFollowup:
		p := followup.Pending{
			IntentType:        a.IntentType,
			Title:             a.Title,
			Missing:           a.Missing,
			RawTimeExpression: a.Context,
			CreatedAt:         e.now(),
		}
		if err := e.pending.Set(ctx, userID, p); err != nil {
			return fmt.Errorf("executor: save pending followup: %w", err)
		}
		return e.send(ctx, userID, a.Question)
	}

	// Safety net: unknown action types are logged and skipped.
	e.log.Warn("unknown action type", "type", fmt.Sprintf("%T", a))
	return nil
}

// send delivers one outgoing message and counts it by delivery status.
func (e *Executor) send(ctx context.Context, userID, message string) error {
	err := e.sender.Send(ctx, userID, message)
	e.metrics.RecordMessageSent(ctx, statusOf(err))
	return err
}

// onboard tells the user how to connect the missing integration, then
// surfaces the original error so the rest of the plan is skipped.
func (e *Executor) onboard(ctx context.Context, userID, instructions string, cause error) error {
	if sendErr := e.send(ctx, userID, instructions); sendErr != nil {
		e.log.Error("send onboarding message", "user", userID, "error", sendErr)
	}
	return cause
}

// statusOf maps an error to the status attribute used on the counters.
func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
