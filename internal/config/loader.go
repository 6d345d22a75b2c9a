package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the known LLM backend names. Used by [Validate]
// to warn about unrecognised names.
var ValidProviderNames = []string{
	"openai", "openai-native", "anthropic", "gemini", "ollama",
	"deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// LLM backend
	if cfg.LLM.Name == "" {
		errs = append(errs, errors.New("llm.name is required"))
	} else if !slices.Contains(ValidProviderNames, cfg.LLM.Name) {
		slog.Warn("unknown llm backend name — may be a typo or third-party backend",
			"name", cfg.LLM.Name,
			"known", ValidProviderNames,
		)
	}
	if cfg.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}

	// Auth
	if !cfg.Auth.Disabled && cfg.Auth.HMACSecret == "" {
		errs = append(errs, errors.New("auth.hmac_secret is required unless auth.disabled is set"))
	}
	if cfg.Auth.Disabled {
		slog.Warn("auth.disabled is set; requests will not be signature-checked")
	}

	// Follow-up timers
	if cfg.Followup.TTL < 0 {
		errs = append(errs, fmt.Errorf("followup.ttl %s must not be negative", cfg.Followup.TTL.Std()))
	}
	if cfg.Followup.PurgeInterval < 0 {
		errs = append(errs, fmt.Errorf("followup.purge_interval %s must not be negative", cfg.Followup.PurgeInterval.Std()))
	}

	// Timezone
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("timezone %q is not a valid IANA zone", cfg.Timezone))
		}
	}

	// Messaging gateway
	if !cfg.Messaging.Disabled && (cfg.Messaging.InstanceID == "" || cfg.Messaging.Token == "") {
		errs = append(errs, errors.New("messaging.instance_id and messaging.token are required unless messaging.disabled is set"))
	}

	// Integration availability warnings
	if cfg.Todoist.APIToken == "" {
		slog.Warn("todoist.api_token is empty; tasks require per-user tokens")
	}
	if cfg.Calendar.CalendarID == "" {
		slog.Warn("calendar.calendar_id is empty; meetings require per-user calendars")
	}

	// Storage
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; user profiles and pending follow-ups are held in memory only")
	}

	return errors.Join(errs...)
}
