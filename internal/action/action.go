// Package action defines the closed set of side-effecting actions the
// decision layer can emit, and the ordered plan that groups them.
//
// A plan is produced fresh for every user turn and consumed exactly once by
// the executor. Actions are flat records of primitive fields — all decision
// logic happens before a plan exists.
package action

import "github.com/daniel5812/brain-dump-server/internal/intent"

// Action is one step of a plan: exactly one of [CreateTask], [CreateMeeting],
// [SaveIdea], [SendMessage] or [RequestFollowup]. The set is closed;
// executors dispatch with a type switch and log-and-skip anything else.
type Action interface {
	isAction()
}

// CreateTask creates a to-do item on the task-service collaborator.
type CreateTask struct {
	Title string
	Due   string // ISO timestamp; empty means no deadline
}

// CreateMeeting creates a calendar event on the calendar collaborator.
type CreateMeeting struct {
	Title string
	Start string
	End   string
}

// SaveIdea records a captured thought. Persistence is out of scope — the
// executor logs it and confirms to the user.
type SaveIdea struct {
	Title string
}

// SendMessage delivers a message to the user via the messaging collaborator.
type SendMessage struct {
	Message string
}

// RequestFollowup opens (or replaces) the user's pending clarification and
// sends Question. Context carries the original free-text time expression so
// later replies can be combined with it.
type RequestFollowup struct {
	IntentType intent.Hypothesis
	Title      string
	Missing    intent.Missing
	Context    string
	Question   string
}

func (CreateTask) isAction()      {}
func (CreateMeeting) isAction()   {}
func (SaveIdea) isAction()        {}
func (SendMessage) isAction()     {}
func (RequestFollowup) isAction() {}

// Plan is the ordered list of actions produced for one user turn.
type Plan struct {
	Actions []Action
}

// Terminal reports whether the plan fully executes the user's intent —
// creates a task, a meeting, or saves an idea. A terminal plan ends any
// pending follow-up conversation; a non-terminal plan must leave pending
// state intact for the next turn.
func (p Plan) Terminal() bool {
	for _, a := range p.Actions {
		switch a.(type) {
		case CreateTask, CreateMeeting, SaveIdea:
			return true
		}
	}
	return false
}
