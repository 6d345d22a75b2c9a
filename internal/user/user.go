// Package user holds per-user configuration: who is allowed to talk to the
// service, how to reach them on WhatsApp, and which external integrations
// (Todoist, Google Calendar) they have connected.
//
// Integration credentials resolve safely: a user either carries their own
// token, or is explicitly allowed to fall back to the system-wide defaults.
// A missing credential is an onboarding situation, not an error.
package user

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no user exists for the given id.
var ErrNotFound = errors.New("user: not found")

// Config is one user's profile. The id is the user's phone number in
// international format without a leading plus (e.g. "972501234567").
type Config struct {
	// ID identifies the user; it doubles as the default WhatsApp number.
	ID string

	// Phone is the WhatsApp number messages are delivered to. Usually equal
	// to ID.
	Phone string

	// Name is an optional display name.
	Name string

	// GreenAPIInstanceID, GreenAPIToken and GreenAPIURL override the
	// system-wide Green API credentials for users running their own
	// messaging instance.
	GreenAPIInstanceID string
	GreenAPIToken      string
	GreenAPIURL        string

	// TodoistToken is the user's personal Todoist API token.
	TodoistToken string

	// CalendarID is the user's Google calendar id.
	CalendarID string

	// HMACSecret is a per-user request signing secret, overriding the
	// shared one when set.
	HMACSecret string

	// UseSystemDefaults allows this user to fall back to the system-wide
	// integration tokens. Reserved for admin and demo accounts.
	UseSystemDefaults bool

	// OnboardingComplete marks users that have connected all required
	// integrations.
	OnboardingComplete bool

	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Defaults are the system-wide integration credentials that
// UseSystemDefaults-users may borrow.
type Defaults struct {
	TodoistToken string
	CalendarID   string
}

// ResolveTodoistToken returns the Todoist token to use for c, preferring the
// user's own token over the system default. The boolean reports whether any
// usable token exists.
func ResolveTodoistToken(c Config, d Defaults) (string, bool) {
	if c.TodoistToken != "" {
		return c.TodoistToken, true
	}
	if c.UseSystemDefaults && d.TodoistToken != "" {
		return d.TodoistToken, true
	}
	return "", false
}

// ResolveCalendarID returns the calendar id to use for c, preferring the
// user's own calendar over the system default.
func ResolveCalendarID(c Config, d Defaults) (string, bool) {
	if c.CalendarID != "" {
		return c.CalendarID, true
	}
	if c.UseSystemDefaults && d.CalendarID != "" {
		return d.CalendarID, true
	}
	return "", false
}
