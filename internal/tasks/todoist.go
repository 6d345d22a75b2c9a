// Package tasks creates to-do items on Todoist through its REST API.
//
// Tokens resolve per user; a user without a usable token gets
// [ErrNotConfigured] so the caller can reply with onboarding instructions
// instead of failing silently.
package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/user"
)

// ErrNotConfigured means the user has no Todoist token and is not allowed to
// use the system default.
var ErrNotConfigured = errors.New("tasks: todoist not configured")

// Creator creates one task for one user.
type Creator interface {
	Create(ctx context.Context, userID, title, due string) error
}

// Hebrew weekday phrases accepted as a task deadline, by weekday index.
var hebrewWeekdays = map[string]time.Weekday{
	"יום ראשון": time.Sunday,
	"יום שני":   time.Monday,
	"יום שלישי": time.Tuesday,
	"יום רביעי": time.Wednesday,
	"יום חמישי": time.Thursday,
	"יום שישי":  time.Friday,
	"שבת":       time.Saturday,
}

var isoDatePrefixRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Todoist is a [Creator] backed by the Todoist REST API.
type Todoist struct {
	httpClient *http.Client
	log        *slog.Logger
	baseURL    string
	users      user.Store
	defaults   user.Defaults
	now        func() time.Time
}

var _ Creator = (*Todoist)(nil)

// Option configures a [Todoist].
type Option func(*Todoist)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Todoist) {
		t.httpClient = c
	}
}

// WithBaseURL overrides the default Todoist API base URL.
func WithBaseURL(url string) Option {
	return func(t *Todoist) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Todoist) {
		t.log = l
	}
}

// WithClock overrides the wall clock used for weekday deadlines. Intended for
// tests.
func WithClock(now func() time.Time) Option {
	return func(t *Todoist) {
		t.now = now
	}
}

// New constructs a Todoist task creator resolving tokens against the given
// user store and system defaults.
func New(users user.Store, defaults user.Defaults, opts ...Option) *Todoist {
	t := &Todoist{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
		baseURL:    "https://api.todoist.com/rest/v2",
		users:      users,
		defaults:   defaults,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create implements [Creator].
func (t *Todoist) Create(ctx context.Context, userID, title, due string) error {
	var cfg user.Config
	if userID != "" {
		var err error
		cfg, err = t.users.Get(ctx, userID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("tasks: resolve user %q: %w", userID, err)
		}
	}

	token, ok := user.ResolveTodoistToken(cfg, t.defaults)
	if !ok {
		return fmt.Errorf("tasks: user %q: %w", userID, ErrNotConfigured)
	}

	body := map[string]string{"content": title}
	dueString, dueDate := t.resolveDue(due)
	if dueString != "" {
		body["due_string"] = dueString
	} else if dueDate != "" {
		body["due_date"] = dueDate
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("tasks: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/tasks", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("tasks: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tasks: create task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("tasks: todoist status %d: %s", resp.StatusCode, msg)
	}

	t.log.Info("todoist task created", "title", title, "user", userID)
	return nil
}

// resolveDue maps a deadline to Todoist's due fields. It accepts the small
// set of spoken Hebrew phrases that survive to this layer plus ISO
// timestamps; anything else leaves the task without a deadline.
func (t *Todoist) resolveDue(due string) (dueString, dueDate string) {
	switch {
	case due == "":
		return "", ""
	case due == "היום":
		return "today", ""
	case due == "מחר":
		return "tomorrow", ""
	}

	if weekday, ok := hebrewWeekdays[due]; ok {
		return "", t.nextWeekday(weekday).Format("2006-01-02")
	}

	if isoDatePrefixRE.MatchString(due) {
		return "", due[:10]
	}
	return "", ""
}

func (t *Todoist) nextWeekday(target time.Weekday) time.Time {
	now := t.now()
	diff := int(target) - int(now.Weekday())
	if diff <= 0 {
		diff += 7
	}
	return now.AddDate(0, 0, diff)
}
