// Package config provides the configuration schema and loader for the
// vizi-kp server.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l to the corresponding [slog.Level]. Unknown levels map to
// info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Providers ProvidersConfig `yaml:"providers"`
	Parser    ParserConfig    `yaml:"parser"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on. Default: ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// DatabaseConfig holds the PostgreSQL connection settings. An empty DSN runs
// the server on in-memory stores, which is useful for demos and tests.
type DatabaseConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

// RedisConfig holds the parse-cache settings. An empty Addr disables the
// cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// CacheTTL bounds how long parse results stay cached. Default: 15m.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ProvidersConfig declares the external AI backends. Both entries are
// optional: without an LLM the parser runs deterministically, without a
// transcriber the audio endpoint is disabled.
type ProvidersConfig struct {
	LLM        ProviderEntry `yaml:"llm"`
	Transcribe ProviderEntry `yaml:"transcribe"`
}

// ProviderEntry is the common configuration block shared by provider types.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "openrouter", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`
}

// ParserConfig tunes the LLM parsing strategy. The deterministic strategy
// has no knobs.
type ParserConfig struct {
	// RatePerMinute caps LLM parse calls. Default: 30.
	RatePerMinute int `yaml:"rate_per_minute"`

	// BreakerFailures is how many consecutive LLM failures open the circuit.
	// Default: 3.
	BreakerFailures int `yaml:"breaker_failures"`

	// BreakerCooldown is how long the circuit stays open. Default: 1m.
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}
