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

// ValidProviderNames lists known provider names per provider kind. Used by
// [Validate] to warn about unrecognised names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openrouter", "openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq"},
	"transcribe": {"openrouter", "openai"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
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

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in default values for unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Redis.CacheTTL <= 0 {
		cfg.Redis.CacheTTL = 15 * time.Minute
	}
	if cfg.Parser.RatePerMinute <= 0 {
		cfg.Parser.RatePerMinute = 30
	}
	if cfg.Parser.BreakerFailures <= 0 {
		cfg.Parser.BreakerFailures = 3
	}
	if cfg.Parser.BreakerCooldown <= 0 {
		cfg.Parser.BreakerCooldown = time.Minute
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("transcribe", cfg.Providers.Transcribe.Name)

	if cfg.Providers.LLM.Name != "" && cfg.Providers.LLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("providers.llm.api_key is required when providers.llm.name is set"))
	}
	if cfg.Providers.LLM.Name != "" && cfg.Providers.LLM.Model == "" {
		errs = append(errs, fmt.Errorf("providers.llm.model is required when providers.llm.name is set"))
	}
	if cfg.Providers.Transcribe.Name != "" && cfg.Providers.Transcribe.APIKey == "" {
		errs = append(errs, fmt.Errorf("providers.transcribe.api_key is required when providers.transcribe.name is set"))
	}

	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; transcripts will be parsed deterministically only")
	}

	return errors.Join(errs...)
}

// validateProviderName warns about provider names not on the known list.
// Unknown names are not fatal so that new backends can be tried without a
// code change.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	if valid, ok := ValidProviderNames[kind]; ok && !slices.Contains(valid, name) {
		slog.Warn("unrecognised provider name",
			"kind", kind, "name", name, "known", valid)
	}
}
