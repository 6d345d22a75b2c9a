package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// AllowedUsersChanged is set when the auth allow-list changed.
	AllowedUsersChanged bool
	NewAllowedUsers     []string

	// RestartRequired is set when a field that cannot be hot-reloaded
	// changed (listen address, storage, LLM backend, integrations).
	RestartRequired bool
}

// Diff compares old and new configs and returns what changed.
// Only changes that are safe to apply without restart are applied by callers;
// everything else just flips RestartRequired.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !slices.Equal(old.Auth.AllowedUsers, new.Auth.AllowedUsers) {
		d.AllowedUsersChanged = true
		d.NewAllowedUsers = slices.Clone(new.Auth.AllowedUsers)
	}

	switch {
	case old.Server.ListenAddr != new.Server.ListenAddr:
		d.RestartRequired = true
	case old.LLM != new.LLM:
		d.RestartRequired = true
	case old.Storage != new.Storage:
		d.RestartRequired = true
	case old.Messaging != new.Messaging:
		d.RestartRequired = true
	case old.Todoist != new.Todoist || old.Calendar != new.Calendar:
		d.RestartRequired = true
	case old.Timezone != new.Timezone:
		d.RestartRequired = true
	}

	return d
}
