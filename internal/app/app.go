// Package app wires all subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run executes the background maintenance loop, and Shutdown
// tears everything down in order. HandleTurn is the entry point for one
// user message; the HTTP layer calls it after authentication.
//
// For testing, inject mock implementations via functional options
// (WithProvider, WithUserStore, etc.). When an option is not provided, New
// creates real implementations from the config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daniel5812/brain-dump-server/internal/auth"
	"github.com/daniel5812/brain-dump-server/internal/calendar"
	"github.com/daniel5812/brain-dump-server/internal/config"
	"github.com/daniel5812/brain-dump-server/internal/decision"
	"github.com/daniel5812/brain-dump-server/internal/executor"
	"github.com/daniel5812/brain-dump-server/internal/extract"
	"github.com/daniel5812/brain-dump-server/internal/followup"
	"github.com/daniel5812/brain-dump-server/internal/health"
	"github.com/daniel5812/brain-dump-server/internal/messaging"
	"github.com/daniel5812/brain-dump-server/internal/observe"
	"github.com/daniel5812/brain-dump-server/internal/tasks"
	"github.com/daniel5812/brain-dump-server/internal/user"
	"github.com/daniel5812/brain-dump-server/pkg/provider/llm"
)

// App owns all subsystem lifetimes and orchestrates the turn pipeline.
type App struct {
	cfg *config.Config

	users    user.Store
	pending  followup.Store
	pool     *pgxpool.Pool
	provider llm.Provider
	sender   messaging.Sender
	tasks    tasks.Creator
	calendar calendar.EventCreator

	extractor *extract.Extractor
	engine    *decision.Engine
	executor  *executor.Executor
	metrics   *observe.Metrics

	loc *time.Location
	now func() time.Time

	// turns serialises processing per user.
	turns turnLocks

	// allowed is the hot-reloadable user allow-list. Nil means everyone.
	allowMu sync.RWMutex
	allowed []string

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithProvider injects an LLM provider instead of creating one from config.
func WithProvider(p llm.Provider) Option {
	return func(a *App) { a.provider = p }
}

// WithUserStore injects a user store instead of creating one from config.
func WithUserStore(s user.Store) Option {
	return func(a *App) { a.users = s }
}

// WithFollowupStore injects a pending-followup store instead of creating one
// from config.
func WithFollowupStore(s followup.Store) Option {
	return func(a *App) { a.pending = s }
}

// WithSender injects a message sender instead of creating a Green API client.
func WithSender(s messaging.Sender) Option {
	return func(a *App) { a.sender = s }
}

// WithTaskCreator injects a task creator instead of creating a Todoist client.
func WithTaskCreator(c tasks.Creator) Option {
	return func(a *App) { a.tasks = c }
}

// WithEventCreator injects a calendar client instead of creating a Google one.
func WithEventCreator(c calendar.EventCreator) Option {
	return func(a *App) { a.calendar = c }
}

// WithMetrics injects a metrics instance instead of using the global default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithClock overrides the wall clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. Use Option functions
// to inject test doubles for any subsystem.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg: cfg,
		now: time.Now,
	}
	for _, o := range opts {
		o(a)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.loc = loc
	a.allowed = cfg.Auth.AllowedUsers

	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Storage ───────────────────────────────────────────────────────
	if err := a.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("app: init storage: %w", err)
	}

	// ── 2. LLM backend ───────────────────────────────────────────────────
	if err := a.initProvider(); err != nil {
		return nil, fmt.Errorf("app: init llm backend: %w", err)
	}
	a.extractor = extract.New(a.provider)

	// ── 3. Decision engine ───────────────────────────────────────────────
	a.engine = decision.New(decision.WithClock(a.localNow))

	// ── 4. Collaborators ─────────────────────────────────────────────────
	if err := a.initCollaborators(); err != nil {
		return nil, fmt.Errorf("app: init collaborators: %w", err)
	}

	a.executor = executor.New(a.sender, a.tasks, a.calendar, a.pending,
		executor.WithClock(a.now), executor.WithMetrics(a.metrics))

	return a, nil
}

// localNow is the wall clock shifted into the configured timezone. All date
// resolution happens in that zone.
func (a *App) localNow() time.Time {
	return a.now().In(a.loc)
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initStorage connects the Postgres-backed stores, or falls back to in-memory
// stores when no DSN is configured.
func (a *App) initStorage(ctx context.Context) error {
	if a.users != nil && a.pending != nil {
		return nil // both injected
	}

	dsn := a.cfg.Storage.PostgresDSN
	if dsn == "" {
		if a.users == nil {
			a.users = user.NewMemStore()
		}
		if a.pending == nil {
			a.pending = followup.NewMemStore(a.cfg.FollowupTTL())
		}
		return nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	if a.users == nil {
		store := user.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		a.users = store
	}
	if a.pending == nil {
		store := followup.NewPostgresStore(pool, a.cfg.FollowupTTL())
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		a.pending = store
	}
	return nil
}

// initProvider builds the LLM backend from config via the provider registry.
func (a *App) initProvider() error {
	if a.provider != nil {
		return nil
	}
	p, err := NewProviderRegistry().CreateLLM(a.cfg.LLM)
	if err != nil {
		return err
	}
	a.provider = p
	slog.Info("llm backend ready", "backend", a.cfg.LLM.Name, "model", a.cfg.LLM.Model)
	return nil
}

// initCollaborators creates the WhatsApp, Todoist, and Calendar clients.
func (a *App) initCollaborators() error {
	defaults := user.Defaults{
		TodoistToken: a.cfg.Todoist.APIToken,
		CalendarID:   a.cfg.Calendar.CalendarID,
	}

	if a.sender == nil {
		msgOpts := []messaging.Option{messaging.WithUserDirectory(a.users)}
		if a.cfg.Messaging.BaseURL != "" {
			msgOpts = append(msgOpts, messaging.WithBaseURL(a.cfg.Messaging.BaseURL))
		}
		if a.cfg.Messaging.DefaultPhone != "" {
			msgOpts = append(msgOpts, messaging.WithDefaultPhone(a.cfg.Messaging.DefaultPhone))
		}
		if a.cfg.Messaging.Disabled {
			msgOpts = append(msgOpts, messaging.Disabled())
		}
		sender, err := messaging.New(a.cfg.Messaging.InstanceID, a.cfg.Messaging.Token, msgOpts...)
		if err != nil {
			return err
		}
		a.sender = sender
	}

	if a.tasks == nil {
		a.tasks = tasks.New(a.users, defaults, tasks.WithClock(a.localNow))
	}

	if a.calendar == nil {
		a.calendar = calendar.New(
			calendar.StaticToken(a.cfg.Calendar.AccessToken),
			a.users,
			defaults,
			calendar.WithTimezone(a.loc.String()),
		)
	}

	return nil
}

// ─── Auth ────────────────────────────────────────────────────────────────────

// UserAllowed reports whether userID passes the current allow-list. An empty
// list allows everyone.
func (a *App) UserAllowed(userID string) bool {
	a.allowMu.RLock()
	defer a.allowMu.RUnlock()
	if len(a.allowed) == 0 {
		return true
	}
	for _, id := range a.allowed {
		if id == userID {
			return true
		}
	}
	return false
}

// SetAllowedUsers replaces the allow-list. Used by the config watcher on hot
// reload.
func (a *App) SetAllowedUsers(list []string) {
	a.allowMu.Lock()
	a.allowed = list
	a.allowMu.Unlock()
}

// VerifySignature checks a turn signature. A user with a personal secret
// overrides the shared one. Always true when auth is disabled.
func (a *App) VerifySignature(ctx context.Context, userID, text string, timestamp int64, signature string) bool {
	if a.cfg.Auth.Disabled {
		return true
	}
	secret := a.cfg.Auth.HMACSecret
	if cfg, err := a.users.Get(ctx, userID); err == nil && cfg.HMACSecret != "" {
		secret = cfg.HMACSecret
	}
	return auth.Verify(secret, userID, text, timestamp, signature)
}

// HealthCheckers returns readiness checkers for subsystems that can fail
// independently. In-memory deployments have nothing to probe.
func (a *App) HealthCheckers() []health.Checker {
	if a.pool == nil {
		return nil
	}
	return []health.Checker{health.Database(a.pool.Ping)}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run executes the background maintenance loop, sweeping expired pending
// follow-ups, and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.PurgeInterval())
	defer ticker.Stop()

	slog.Info("app running",
		"llm", a.cfg.LLM.Name,
		"followup_ttl", a.cfg.FollowupTTL(),
		"timezone", a.loc.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := a.pending.Purge(ctx)
			if err != nil {
				slog.Warn("purge expired follow-ups", "err", err)
				continue
			}
			if n > 0 {
				slog.Debug("purged expired follow-ups", "count", n)
				a.metrics.PendingFollowups.Add(ctx, int64(-n))
			}
		}
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
