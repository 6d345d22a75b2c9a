// Package calendar creates events on Google Calendar through its REST API.
//
// The calendar id resolves per user; a user without a connected calendar gets
// [ErrNotConfigured] so the caller can reply with onboarding instructions.
// Event timestamps are local ISO strings paired with a single configured
// timezone.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/user"
)

// ErrNotConfigured means the user has no connected calendar and is not
// allowed to use the system default.
var ErrNotConfigured = errors.New("calendar: google calendar not configured")

// EventCreator creates one calendar event for one user.
type EventCreator interface {
	CreateEvent(ctx context.Context, userID, title, startISO, endISO string) error
}

// TokenSource supplies a bearer token for Google API calls. Deployments
// typically exchange a service-account key for short-lived tokens; tests use
// [StaticToken].
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a [TokenSource] returning a fixed token.
type StaticToken string

// Token implements [TokenSource].
func (s StaticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", errors.New("calendar: empty static token")
	}
	return string(s), nil
}

// Google is an [EventCreator] backed by the Google Calendar v3 REST API.
type Google struct {
	httpClient *http.Client
	log        *slog.Logger
	baseURL    string
	tokens     TokenSource
	users      user.Store
	defaults   user.Defaults
	timezone   string
}

var _ EventCreator = (*Google)(nil)

// Option configures a [Google].
type Option func(*Google)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Google) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the default Calendar API base URL.
func WithBaseURL(u string) Option {
	return func(g *Google) {
		g.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Google) {
		g.log = l
	}
}

// WithTimezone sets the timezone attached to event timestamps.
func WithTimezone(tz string) Option {
	return func(g *Google) {
		g.timezone = tz
	}
}

// New constructs a Google Calendar event creator resolving calendar ids
// against the given user store and system defaults.
func New(tokens TokenSource, users user.Store, defaults user.Defaults, opts ...Option) *Google {
	g := &Google{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
		baseURL:    "https://www.googleapis.com/calendar/v3",
		tokens:     tokens,
		users:      users,
		defaults:   defaults,
		timezone:   "Asia/Jerusalem",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventBody struct {
	Summary string    `json:"summary"`
	Start   eventTime `json:"start"`
	End     eventTime `json:"end"`
}

// CreateEvent implements [EventCreator].
func (g *Google) CreateEvent(ctx context.Context, userID, title, startISO, endISO string) error {
	var cfg user.Config
	if userID != "" {
		var err error
		cfg, err = g.users.Get(ctx, userID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("calendar: resolve user %q: %w", userID, err)
		}
	}

	calendarID, ok := user.ResolveCalendarID(cfg, g.defaults)
	if !ok {
		return fmt.Errorf("calendar: user %q: %w", userID, ErrNotConfigured)
	}

	token, err := g.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("calendar: obtain token: %w", err)
	}

	payload, err := json.Marshal(eventBody{
		Summary: title,
		Start:   eventTime{DateTime: startISO, TimeZone: g.timezone},
		End:     eventTime{DateTime: endISO, TimeZone: g.timezone},
	})
	if err != nil {
		return fmt.Errorf("calendar: marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", g.baseURL, url.PathEscape(calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: create event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("calendar: google status %d: %s", resp.StatusCode, msg)
	}

	g.log.Info("calendar event created", "title", title, "user", userID, "start", startISO)
	return nil
}
