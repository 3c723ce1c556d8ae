package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envTelegramBotToken  = "TELEGRAM_BOT_TOKEN"
	envTelegramAllowFrom = "TELEGRAM_ALLOW_FROM"
	envStoragePath       = "FACTLENS_DB_PATH"
)

const (
	defaultModel           = "gpt-4o-mini"
	defaultMaxOutputTokens = 800
	defaultRequestTimeout  = 30
	defaultStoragePath     = "factlens.db"
	defaultStatusHost      = "0.0.0.0"
	defaultStatusPort      = 8790
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	OpenAI   OpenAIConfig   `json:"openai"`
	Storage  StorageConfig  `json:"storage"`
	Status   StatusConfig   `json:"status"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Token     string   `json:"token"`
	AllowFrom []string `json:"allow_from"`
}

// OpenAIConfig configures the analysis model client.
type OpenAIConfig struct {
	APIKeyEnv             string  `json:"api_key_env"`
	BaseURL               string  `json:"base_url"`
	Organization          string  `json:"organization"`
	Project               string  `json:"project"`
	Model                 string  `json:"model"`
	MaxOutputTokens       int     `json:"max_output_tokens"`
	Temperature           float64 `json:"temperature"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds"`
}

// StorageConfig configures the preference store database file.
type StorageConfig struct {
	Path string `json:"path"`
}

// StatusConfig configures the liveness/readiness HTTP endpoint.
type StatusConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoadConfig resolves config.json if present, unmarshals it, applies
// defaults, and layers environment overrides on top.
//
// A missing config file is not an error; the bot can run from environment
// variables alone.
func LoadConfig() (*Config, error) {
	// Best effort; deployments without a .env file read the process env.
	_ = godotenv.Load()

	var cfg Config

	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file or
// environment input.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Validate checks that the required transport secret is present so startup
// fails fast instead of running with an empty credential.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (set TELEGRAM_BOT_TOKEN)")
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.OpenAI.Model) == "" {
		cfg.OpenAI.Model = defaultModel
	}
	if cfg.OpenAI.MaxOutputTokens <= 0 {
		cfg.OpenAI.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.OpenAI.RequestTimeoutSeconds <= 0 {
		cfg.OpenAI.RequestTimeoutSeconds = defaultRequestTimeout
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = defaultStoragePath
	}
	if strings.TrimSpace(cfg.Status.Host) == "" {
		cfg.Status.Host = defaultStatusHost
	}
	if cfg.Status.Port <= 0 {
		cfg.Status.Port = defaultStatusPort
	}
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if token := strings.TrimSpace(os.Getenv(envTelegramBotToken)); token != "" {
		cfg.Telegram.Token = token
	}

	if rawAllowFrom := strings.TrimSpace(os.Getenv(envTelegramAllowFrom)); rawAllowFrom != "" {
		cfg.Telegram.AllowFrom = parseCSV(rawAllowFrom)
	}

	if path := strings.TrimSpace(os.Getenv(envStoragePath)); path != "" {
		cfg.Storage.Path = path
	}
}

// parseCSV splits comma-separated values and returns a trimmed compact slice.
func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}

	return slices.Clip(clean)
}

// findConfigPath resolves the active config file location.
//
// Precedence is FACTLENS_CONFIG first, then cwd-local fallback paths. An
// empty path with a nil error means no config file exists.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("FACTLENS_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("FACTLENS_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
