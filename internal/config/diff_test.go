package config_test

import (
	"slices"
	"testing"
	"time"

	"github.com/careervani/careervani/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogInfo, ListenAddr: ":8080"},
		Auth:   config.AuthConfig{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour},
		Providers: config.ProvidersConfig{
			STT: []config.ProviderEntry{{Name: "whisper", Options: map[string]any{"threads": 4}}},
		},
	}
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	d := config.Diff(baseConfig(), baseConfig())
	if d.Changed() {
		t.Errorf("expected no changes, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if len(d.RestartRequired) != 0 {
		t.Errorf("log level alone must not require a restart, got %v", d.RestartRequired)
	}
}

func TestDiff_RestartRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{"listen addr", func(c *config.Config) { c.Server.ListenAddr = ":9090" }, []string{"server"}},
		{"cors origins", func(c *config.Config) { c.Server.CORSOrigins = []string{"https://x"} }, []string{"server"}},
		{"secret", func(c *config.Config) { c.Auth.JWTSecret = "fedcba9876543210" }, []string{"auth"}},
		{"provider option", func(c *config.Config) { c.Providers.STT[0].Options["threads"] = 8 }, []string{"providers"}},
		{"several", func(c *config.Config) {
			c.Database.PostgresDSN = "postgres://x"
			c.Interview.SessionTTL = time.Minute
		}, []string{"database", "interview"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			new := baseConfig()
			tc.mutate(new)
			d := config.Diff(baseConfig(), new)
			if !slices.Equal(d.RestartRequired, tc.want) {
				t.Errorf("RestartRequired = %v, want %v", d.RestartRequired, tc.want)
			}
			if d.LogLevelChanged {
				t.Error("LogLevelChanged should be false")
			}
		})
	}
}
