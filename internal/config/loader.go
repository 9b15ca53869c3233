package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":     {"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt":     {"whisper", "openai", "deepgram"},
	"grammar": {"languagetool", "llm"},
}

// Defaults applied by [ApplyDefaults].
const (
	DefaultListenAddr      = ":8080"
	DefaultTokenTTL        = 24 * time.Hour
	DefaultSessionTTL      = 2 * time.Hour
	DefaultSweepInterval   = 5 * time.Minute
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadBytes  = 32 << 20
	DefaultSMTPPort        = 587

	minJWTSecretLen = 16
)

// Load reads the YAML configuration file at path, overlays environment
// variables, and returns a validated [Config]. It is a convenience wrapper
// around [LoadFromReader].
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

// LoadFromReader decodes a YAML config from r, overlays environment
// variables, applies defaults and validates the result. An empty document is
// accepted so a deployment can be configured from the environment alone.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields with their defaults and copies API
// keys from [Secrets] into provider entries that leave them empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	if cfg.Interview.SessionTTL <= 0 {
		cfg.Interview.SessionTTL = DefaultSessionTTL
	}
	if cfg.Interview.SweepInterval <= 0 {
		cfg.Interview.SweepInterval = DefaultSweepInterval
	}
	if cfg.SMTP.Enabled() {
		if cfg.SMTP.Port == 0 {
			cfg.SMTP.Port = DefaultSMTPPort
		}
		if cfg.SMTP.StartTLS == "" {
			cfg.SMTP.StartTLS = StartTLSMandatory
		}
		if cfg.SMTP.From == "" {
			cfg.SMTP.From = cfg.SMTP.Username
		}
	}

	for _, list := range [][]ProviderEntry{cfg.Providers.LLM, cfg.Providers.STT, cfg.Providers.Grammar} {
		for i := range list {
			if list[i].APIKey == "" {
				list[i].APIKey = cfg.Secrets.keyFor(list[i].Name)
			}
		}
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if (cfg.Server.TLS.CertFile == "") != (cfg.Server.TLS.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}
	if cfg.Server.TLS.Enabled() && !cfg.Server.SecureCookies {
		slog.Warn("server.tls is enabled but server.secure_cookies is false; session cookies will be sent without the Secure flag")
	}

	// Auth
	switch {
	case cfg.Auth.JWTSecret == "":
		errs = append(errs, errors.New("auth.jwt_secret is required (set CAREERVANI_JWT_SECRET)"))
	case len(cfg.Auth.JWTSecret) < minJWTSecretLen:
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretLen))
	}

	// Pronunciation
	if cfg.Pronunciation.DictionaryPath == "" {
		errs = append(errs, errors.New("pronunciation.dictionary_path is required"))
	}

	// SMTP
	if cfg.SMTP.Enabled() {
		if cfg.SMTP.StartTLS != "" && !cfg.SMTP.StartTLS.IsValid() {
			errs = append(errs, fmt.Errorf("smtp.starttls %q is invalid; valid values: mandatory, opportunistic, none", cfg.SMTP.StartTLS))
		}
		if cfg.SMTP.From == "" {
			errs = append(errs, errors.New("smtp.from is required when smtp.host is set"))
		} else if _, err := mail.ParseAddress(cfg.SMTP.From); err != nil {
			errs = append(errs, fmt.Errorf("smtp.from %q is not a valid address: %w", cfg.SMTP.From, err))
		}
		if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
			errs = append(errs, fmt.Errorf("smtp.port %d is out of range", cfg.SMTP.Port))
		}
	}

	// Providers
	errs = append(errs, validateProviders("llm", cfg.Providers.LLM)...)
	errs = append(errs, validateProviders("stt", cfg.Providers.STT)...)
	errs = append(errs, validateProviders("grammar", cfg.Providers.Grammar)...)

	if len(cfg.Providers.STT) == 0 {
		errs = append(errs, errors.New("providers.stt must list at least one provider"))
	}
	if len(cfg.Providers.Grammar) == 0 {
		errs = append(errs, errors.New("providers.grammar must list at least one provider"))
	}
	if len(cfg.Providers.LLM) == 0 {
		slog.Warn("no LLM provider configured; regional translation will be unavailable")
		for _, g := range cfg.Providers.Grammar {
			if g.Name == "llm" {
				errs = append(errs, errors.New("providers.grammar uses \"llm\" but providers.llm is empty"))
				break
			}
		}
	}

	// Persistence
	if cfg.Database.PostgresDSN == "" {
		slog.Warn("database.postgres_dsn is empty; users and feedback are kept in memory only")
	}

	return errors.Join(errs...)
}

// validateProviders checks the entries of one provider list. Unknown names
// only log a warning since third-party factories may be registered.
func validateProviders(kind string, entries []ProviderEntry) []error {
	var errs []error
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		prefix := fmt.Sprintf("providers.%s[%d]", kind, i)
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := seen[e.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of providers.%s[%d]", prefix, e.Name, kind, prev))
		}
		seen[e.Name] = i
		validateProviderName(kind, e.Name)
	}
	return errs
}

// validateProviderName logs a warning if name is not found in the
// [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	known, ok := ValidProviderNames[kind]
	if !ok || slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
