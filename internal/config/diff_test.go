package config_test

import (
	"testing"

	"github.com/daniel5812/brain-dump-server/internal/config"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.ListenAddr = ":8080"
	cfg.Server.LogLevel = config.LogInfo
	cfg.LLM = config.ProviderEntry{Name: "openai", Model: "gpt-4o-mini"}
	cfg.Auth.HMACSecret = "secret"
	cfg.Auth.AllowedUsers = []string{"972501234567"}
	return cfg
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()

	d := config.Diff(old, new)
	if d.LogLevelChanged || d.AllowedUsersChanged || d.RestartRequired {
		t.Errorf("identical configs should produce empty diff, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Fatal("LogLevelChanged should be set")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("NewLogLevel: got %q, want %q", d.NewLogLevel, config.LogDebug)
	}
	if d.RestartRequired {
		t.Error("log level change should not require restart")
	}
}

func TestDiff_AllowedUsersChanged(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()
	new.Auth.AllowedUsers = []string{"972501234567", "972509999999"}

	d := config.Diff(old, new)
	if !d.AllowedUsersChanged {
		t.Fatal("AllowedUsersChanged should be set")
	}
	if len(d.NewAllowedUsers) != 2 {
		t.Errorf("NewAllowedUsers: got %v", d.NewAllowedUsers)
	}
	if d.RestartRequired {
		t.Error("allow-list change should not require restart")
	}
}

func TestDiff_RestartRequired(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"listen addr", func(c *config.Config) { c.Server.ListenAddr = ":9090" }},
		{"llm model", func(c *config.Config) { c.LLM.Model = "gpt-4o" }},
		{"storage dsn", func(c *config.Config) { c.Storage.PostgresDSN = "postgres://localhost/x" }},
		{"messaging token", func(c *config.Config) { c.Messaging.Token = "new" }},
		{"todoist token", func(c *config.Config) { c.Todoist.APIToken = "new" }},
		{"timezone", func(c *config.Config) { c.Timezone = "UTC" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			old := baseConfig()
			new := baseConfig()
			tt.mutate(new)

			if d := config.Diff(old, new); !d.RestartRequired {
				t.Errorf("%s change should require restart, diff %+v", tt.name, d)
			}
		})
	}
}
