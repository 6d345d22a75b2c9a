// Package config defines the YAML configuration schema and the provider
// registry that builds LLM backends from it.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level. The empty string is
// valid and means the default (info).
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError, "":
		return true
	}
	return false
}

// Duration wraps time.Duration so YAML values like "24h" or "15m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration document.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       ProviderEntry   `yaml:"llm"`
	Auth      AuthConfig      `yaml:"auth"`
	Followup  FollowupConfig  `yaml:"followup"`
	Storage   StorageConfig   `yaml:"storage"`
	Messaging MessagingConfig `yaml:"messaging"`
	Todoist   TodoistConfig   `yaml:"todoist"`
	Calendar  CalendarConfig  `yaml:"calendar"`

	// Timezone is the IANA zone used for date resolution and calendar
	// events. Defaults to Asia/Jerusalem.
	Timezone string `yaml:"timezone"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// ListenAddr is the host:port the server binds to, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel sets the minimum slog level. Defaults to info.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProviderEntry configures one LLM backend.
type ProviderEntry struct {
	// Name selects the backend, e.g. "openai", "anthropic", "ollama".
	Name string `yaml:"name"`

	// APIKey authenticates against the backend. May be empty for local
	// backends like ollama.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the backend-specific model identifier.
	Model string `yaml:"model"`
}

// AuthConfig controls request signing and the user allow-list.
type AuthConfig struct {
	// Disabled turns off HMAC verification. Intended for local
	// development only.
	Disabled bool `yaml:"disabled"`

	// HMACSecret is the shared secret requests are signed with. A user
	// with a personal secret overrides it.
	HMACSecret string `yaml:"hmac_secret"`

	// AllowedUsers restricts service to the listed user IDs. Empty means
	// every signed request is accepted.
	AllowedUsers []string `yaml:"allowed_users"`
}

// FollowupConfig controls the pending-clarification store.
type FollowupConfig struct {
	// TTL is how long an unanswered clarification stays pending.
	// Defaults to 24h.
	TTL Duration `yaml:"ttl"`

	// PurgeInterval is how often expired records are swept.
	// Defaults to 1h.
	PurgeInterval Duration `yaml:"purge_interval"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// PostgresDSN connects user profiles and pending follow-ups to
	// Postgres. Empty means in-memory stores.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// MessagingConfig configures the Green API WhatsApp gateway.
type MessagingConfig struct {
	BaseURL    string `yaml:"base_url"`
	InstanceID string `yaml:"instance_id"`
	Token      string `yaml:"token"`

	// DefaultPhone receives replies for users without a stored phone.
	DefaultPhone string `yaml:"default_phone"`

	// Disabled logs outgoing messages instead of sending them.
	Disabled bool `yaml:"disabled"`
}

// TodoistConfig holds the system-default Todoist credentials.
type TodoistConfig struct {
	// APIToken is used for users who opted into system defaults.
	APIToken string `yaml:"api_token"`
}

// CalendarConfig holds the system-default Google Calendar settings.
type CalendarConfig struct {
	// CalendarID is used for users who opted into system defaults.
	CalendarID string `yaml:"calendar_id"`

	// AccessToken authenticates calendar API calls.
	AccessToken string `yaml:"access_token"`
}

// Defaults applied by the accessors below.
const (
	DefaultListenAddr    = ":8080"
	DefaultTimezone      = "Asia/Jerusalem"
	DefaultFollowupTTL   = 24 * time.Hour
	DefaultPurgeInterval = time.Hour
)

// ListenAddr returns the configured listen address or the default.
func (c *Config) ListenAddr() string {
	if c.Server.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.Server.ListenAddr
}

// Location resolves the configured timezone, defaulting to Asia/Jerusalem.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

// FollowupTTL returns the configured pending TTL or the default.
func (c *Config) FollowupTTL() time.Duration {
	if c.Followup.TTL == 0 {
		return DefaultFollowupTTL
	}
	return c.Followup.TTL.Std()
}

// PurgeInterval returns the configured sweep interval or the default.
func (c *Config) PurgeInterval() time.Duration {
	if c.Followup.PurgeInterval == 0 {
		return DefaultPurgeInterval
	}
	return c.Followup.PurgeInterval.Std()
}

// UserAllowed reports whether userID passes the allow-list. An empty list
// allows everyone.
func (c *Config) UserAllowed(userID string) bool {
	if len(c.Auth.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.Auth.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
