package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/careervani/careervani/internal/config"
	"github.com/careervani/careervani/pkg/provider/grammar"
	grammarmock "github.com/careervani/careervani/pkg/provider/grammar/mock"
	"github.com/careervani/careervani/pkg/provider/llm"
	llmmock "github.com/careervani/careervani/pkg/provider/llm/mock"
	"github.com/careervani/careervani/pkg/provider/stt"
	sttmock "github.com/careervani/careervani/pkg/provider/stt/mock"
)

// ─── helpers ───

const sampleYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
  cors_origins: ["https://app.careervani.example"]
  secure_cookies: true
  max_upload_bytes: 1048576

database:
  postgres_dsn: "postgres://localhost/careervani"

auth:
  jwt_secret: "0123456789abcdef0123"
  token_ttl: 12h

smtp:
  host: smtp.example.com
  username: reports@example.com
  password: hunter22

providers:
  llm:
    - name: openai
      model: gpt-4o-mini
    - name: ollama
      base_url: http://localhost:11434
      model: llama3.1
  stt:
    - name: whisper
      base_url: http://localhost:8081
      language: en
    - name: deepgram
      model: nova-2
  grammar:
    - name: languagetool
      base_url: http://localhost:8010
    - name: llm

interview:
  session_ttl: 30m

feedback:
  archive_path: /var/lib/careervani/feedback.jsonl

pronunciation:
  dictionary_path: /usr/share/careervani/cmudict.dict
  hints: true
`

// ─── loading ───

func TestLoadFromReader_Sample(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level = %q", cfg.Server.LogLevel)
	}
	if !cfg.Server.SecureCookies || cfg.Server.MaxUploadBytes != 1<<20 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("token_ttl = %v, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Interview.SessionTTL != 30*time.Minute {
		t.Errorf("session_ttl = %v, want 30m", cfg.Interview.SessionTTL)
	}
	if len(cfg.Providers.LLM) != 2 || cfg.Providers.LLM[1].BaseURL != "http://localhost:11434" {
		t.Errorf("llm providers = %+v", cfg.Providers.LLM)
	}
	if cfg.Providers.STT[0].Language != "en" {
		t.Errorf("stt[0].language = %q", cfg.Providers.STT[0].Language)
	}
	if got := cfg.Providers.Grammar[1].Name; got != "llm" {
		t.Errorf("grammar[1].name = %q", got)
	}
	if !cfg.Pronunciation.Hints {
		t.Error("pronunciation.hints = false")
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	yaml := `
auth:
  jwt_secret: "0123456789abcdef"
pronunciation:
  dictionary_path: dict.txt
providers:
  stt: [{name: whisper}]
  grammar: [{name: languagetool}]
smtp:
  host: localhost
  username: me@example.com
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	checks := []struct {
		name      string
		got, want any
	}{
		{"listen_addr", cfg.Server.ListenAddr, config.DefaultListenAddr},
		{"log_level", cfg.Server.LogLevel, config.LogInfo},
		{"max_upload_bytes", cfg.Server.MaxUploadBytes, int64(config.DefaultMaxUploadBytes)},
		{"shutdown_timeout", cfg.Server.ShutdownTimeout, config.DefaultShutdownTimeout},
		{"token_ttl", cfg.Auth.TokenTTL, config.DefaultTokenTTL},
		{"session_ttl", cfg.Interview.SessionTTL, config.DefaultSessionTTL},
		{"sweep_interval", cfg.Interview.SweepInterval, config.DefaultSweepInterval},
		{"smtp.port", cfg.SMTP.Port, config.DefaultSMTPPort},
		{"smtp.starttls", cfg.SMTP.StartTLS, config.StartTLSMandatory},
		{"smtp.from", cfg.SMTP.From, "me@example.com"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadFromReader_EnvOverrides(t *testing.T) {
	t.Setenv("CAREERVANI_JWT_SECRET", "from-the-environment")
	t.Setenv("CAREERVANI_SMTP_PASSWORD", "env-password")
	t.Setenv("CAREERVANI_TOKEN_TTL", "90m")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-the-environment" {
		t.Errorf("jwt_secret = %q, want env value", cfg.Auth.JWTSecret)
	}
	if cfg.SMTP.Password != "env-password" {
		t.Errorf("smtp.password = %q, want env value", cfg.SMTP.Password)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Errorf("token_ttl = %v, want 90m", cfg.Auth.TokenTTL)
	}
	if cfg.Providers.LLM[0].APIKey != "sk-env" {
		t.Errorf("openai api_key = %q, want secret from env", cfg.Providers.LLM[0].APIKey)
	}
	if cfg.Providers.LLM[1].APIKey != "" {
		t.Errorf("ollama api_key = %q, want empty", cfg.Providers.LLM[1].APIKey)
	}
}

func TestLoadFromReader_EnvOnly(t *testing.T) {
	t.Setenv("CAREERVANI_JWT_SECRET", "from-the-environment")
	t.Setenv("CAREERVANI_DICTIONARY", "/dict")

	_, err := config.LoadFromReader(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected provider errors for an empty document")
	}
	if strings.Contains(err.Error(), "jwt_secret") || strings.Contains(err.Error(), "dictionary_path") {
		t.Errorf("env values were not applied: %v", err)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("interviewers: []\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "careervani.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join("..", "..", "configs", "example.yaml"))
	if err != nil {
		t.Fatalf("configs/example.yaml must load: %v", err)
	}
	if cfg.SMTP.Enabled() {
		t.Error("example config should ship with mail disabled")
	}
	if got := len(cfg.Providers.Grammar); got != 2 {
		t.Errorf("grammar providers = %d, want 2", got)
	}
}

// ─── registry ───

func TestRegistry_CreateRegistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()

	var gotEntry config.ProviderEntry
	reg.RegisterLLM("openai", func(e config.ProviderEntry) (llm.Provider, error) {
		gotEntry = e
		return &llmmock.Provider{}, nil
	})
	reg.RegisterSTT("whisper", func(config.ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{}, nil
	})
	reg.RegisterGrammar("languagetool", func(config.ProviderEntry) (grammar.Checker, error) {
		return &grammarmock.Checker{}, nil
	})

	p, err := reg.CreateLLM(config.ProviderEntry{Name: "openai", Model: "gpt-4o-mini"})
	if err != nil || p == nil {
		t.Fatalf("CreateLLM: %v", err)
	}
	if gotEntry.Model != "gpt-4o-mini" {
		t.Errorf("factory received model %q", gotEntry.Model)
	}
	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "whisper"}); err != nil {
		t.Errorf("CreateSTT: %v", err)
	}
	if got := reg.Registered("stt"); !slices.Equal(got, []string{"whisper"}) {
		t.Errorf("Registered(stt) = %v", got)
	}
	if got := reg.Registered("tts"); got != nil {
		t.Errorf("Registered(tts) = %v, want nil", got)
	}
	c, err := reg.CreateGrammar(config.ProviderEntry{Name: "languagetool"})
	if err != nil {
		t.Fatalf("CreateGrammar: %v", err)
	}
	if _, err := c.Check(context.Background(), "fine"); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestRegistry_NotRegistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	tests := []struct {
		name string
		fn   func() error
	}{
		{"llm", func() error { _, err := reg.CreateLLM(config.ProviderEntry{Name: "nope"}); return err }},
		{"stt", func() error { _, err := reg.CreateSTT(config.ProviderEntry{Name: "nope"}); return err }},
		{"grammar", func() error { _, err := reg.CreateGrammar(config.ProviderEntry{Name: "nope"}); return err }},
	}
	for _, tc := range tests {
		err := tc.fn()
		if !errors.Is(err, config.ErrProviderNotRegistered) {
			t.Errorf("%s: err = %v, want ErrProviderNotRegistered", tc.name, err)
		}
		if err != nil && !strings.Contains(err.Error(), tc.name+"/") {
			t.Errorf("%s: error %q should name the kind", tc.name, err)
		}
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	wantErr := errors.New("bad key")
	reg.RegisterSTT("deepgram", func(config.ProviderEntry) (stt.Provider, error) { return nil, wantErr })

	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "deepgram"}); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
