package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/action"
	"github.com/daniel5812/brain-dump-server/internal/followup"
	"github.com/daniel5812/brain-dump-server/internal/messages"
	"github.com/daniel5812/brain-dump-server/internal/observe"
	"github.com/daniel5812/brain-dump-server/internal/user"
)

// turnLocks serialises turn processing per user. At most one turn is in
// flight for a given user, so a stored follow-up never races with a
// concurrent reply.
type turnLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

// acquire locks the per-user mutex and returns it for unlocking.
func (l *turnLocks) acquire(userID string) *sync.Mutex {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	lk, ok := l.m[userID]
	if !ok {
		lk = &sync.Mutex{}
		l.m[userID] = lk
	}
	l.mu.Unlock()

	lk.Lock()
	return lk
}

// NormalizeUserID strips everything but digits from a user identifier, so
// "whatsapp:+972-50-1234567" and "972501234567" address the same profile.
func NormalizeUserID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HandleTurn processes one user message end to end: it resolves a pending
// follow-up when one exists, otherwise extracts intent and decides a plan,
// then executes the plan.
func (a *App) HandleTurn(ctx context.Context, userID, text string) error {
	lk := a.turns.acquire(userID)
	defer lk.Unlock()

	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "turn")
	defer span.End()
	log := observe.Logger(ctx)

	a.ensureUser(ctx, userID)

	p, hasPending, err := a.pending.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("app: load pending followup: %w", err)
	}

	var plan action.Plan
	var outcome string

	if hasPending {
		var updated followup.Pending
		plan, updated = followup.Resolve(p, text, a.localNow())

		if plan.Terminal() {
			if err := a.pending.Delete(ctx, userID); err != nil {
				log.Warn("delete pending followup", "user", userID, "err", err)
			} else {
				a.metrics.PendingFollowups.Add(ctx, -1)
			}
		} else if err := a.pending.Set(ctx, userID, updated); err != nil {
			log.Warn("update pending followup", "user", userID, "err", err)
		}
		outcome = "followup_reply"
	} else {
		extractStart := time.Now()
		raw, err := a.extractor.Extract(ctx, text)
		a.metrics.ExtractDuration.Record(ctx, time.Since(extractStart).Seconds())
		if err != nil {
			a.metrics.RecordLLMRequest(ctx, a.cfg.LLM.Name, "error")
			a.metrics.RecordTurn(ctx, "error")
			sendStatus := "ok"
			if sendErr := a.sender.Send(ctx, userID, messages.Misunderstood); sendErr != nil {
				sendStatus = "error"
				log.Error("send fallback message", "user", userID, "err", sendErr)
			}
			a.metrics.RecordMessageSent(ctx, sendStatus)
			return fmt.Errorf("app: extract intent: %w", err)
		}
		a.metrics.RecordLLMRequest(ctx, a.cfg.LLM.Name, "ok")

		plan = a.engine.Decide(raw)
		outcome = outcomeOf(plan)
		if outcome == "followup" {
			a.metrics.PendingFollowups.Add(ctx, 1)
		}
	}

	execErr := a.executor.Execute(ctx, userID, plan)
	a.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
	if execErr != nil {
		a.metrics.RecordTurn(ctx, "error")
		return fmt.Errorf("app: execute plan: %w", execErr)
	}

	a.metrics.RecordTurn(ctx, outcome)
	return nil
}

// ensureUser auto-registers unknown users and refreshes the activity stamp
// for known ones. Profile maintenance never fails a turn.
func (a *App) ensureUser(ctx context.Context, userID string) {
	log := observe.Logger(ctx)
	now := a.now()

	_, err := a.users.Get(ctx, userID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		profile := user.Config{
			ID:           userID,
			Phone:        userID,
			CreatedAt:    now,
			LastActiveAt: now,
		}
		if err := a.users.Upsert(ctx, profile); err != nil {
			log.Warn("create user profile", "user", userID, "err", err)
		} else {
			log.Info("registered new user", "user", userID)
		}
	case err != nil:
		log.Warn("load user profile", "user", userID, "err", err)
	default:
		if err := a.users.Touch(ctx, userID, now); err != nil {
			log.Warn("touch user profile", "user", userID, "err", err)
		}
	}
}

// outcomeOf labels a plan by its primary action for the turn counter.
func outcomeOf(plan action.Plan) string {
	for _, act := range plan.Actions {
		switch act.(type) {
		case action.CreateTask:
			return "task"
		case action.CreateMeeting:
			return "meeting"
		case action.SaveIdea:
			return "idea"
		case action.RequestFollowup:
			return "followup"
		}
	}
	return "misunderstood"
}
