// ABOUTME: Configuration loading and parsing for parley
// ABOUTME: YAML with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete parley configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Groq     GroqConfig     `yaml:"groq"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP listen address and CORS policy.
type ServerConfig struct {
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GroqConfig holds the LLM collaborator settings.
type GroqConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	RequestTimeout    time.Duration `yaml:"-"`
	RequestTimeoutRaw string        `yaml:"request_timeout"`
}

// SessionsConfig holds session store tuning.
type SessionsConfig struct {
	HistoryLimit int `yaml:"history_limit"`

	MaxAge          time.Duration `yaml:"-"`
	ReapInterval    time.Duration `yaml:"-"`
	MaxAgeRaw       string        `yaml:"max_age"`
	ReapIntervalRaw string        `yaml:"reap_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a runnable configuration: listen on :3001, allow the
// local Vite dev server origin, read the Groq key from the environment.
func Default() *Config {
	addr := ":3001"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	origins := []string{"http://localhost:5173"}
	if front := os.Getenv("FRONTEND_URL"); front != "" {
		origins = splitOrigins(front)
	}
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       addr,
			AllowedOrigins: origins,
		},
		Groq: GroqConfig{
			APIKey: os.Getenv("GROQ_API_KEY"),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a configuration file, expands ${VAR_NAME} environment
// references, parses duration strings, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Sessions.HistoryLimit < 0 {
		return fmt.Errorf("sessions.history_limit must not be negative")
	}
	return nil
}

// parseDurations converts raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Groq.RequestTimeoutRaw != "" {
		cfg.Groq.RequestTimeout, err = time.ParseDuration(cfg.Groq.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Groq.RequestTimeoutRaw, err)
		}
	}

	if cfg.Sessions.MaxAgeRaw != "" {
		cfg.Sessions.MaxAge, err = time.ParseDuration(cfg.Sessions.MaxAgeRaw)
		if err != nil {
			return fmt.Errorf("parsing max_age %q: %w", cfg.Sessions.MaxAgeRaw, err)
		}
	}

	if cfg.Sessions.ReapIntervalRaw != "" {
		cfg.Sessions.ReapInterval, err = time.ParseDuration(cfg.Sessions.ReapIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing reap_interval %q: %w", cfg.Sessions.ReapIntervalRaw, err)
		}
	}

	return nil
}

// splitOrigins splits a comma-separated origin list, trimming whitespace.
func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
