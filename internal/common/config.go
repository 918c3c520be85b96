package common

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/parley/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Upload      UploadConfig    `toml:"upload"`
	Chat        ChatConfig      `toml:"chat"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

// StorageConfig selects the record store backend.
// "memory" keeps everything in process maps; "badger" persists to disk.
type StorageConfig struct {
	Type   string       `toml:"type" validate:"oneof=memory badger"`
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// UploadConfig bounds what the document upload endpoint accepts.
type UploadConfig struct {
	MaxFileSize int64 `toml:"max_file_size" validate:"gt=0"` // bytes, default 10MB
}

// ChatConfig controls the completion context window. These are token-budget
// controls, not storage limits: the full transcript is always persisted.
type ChatConfig struct {
	MaxHistoryMessages int `toml:"max_history_messages" validate:"gt=0"` // last N transcript messages sent per turn
	MaxContextChars    int `toml:"max_context_chars" validate:"gt=0"`    // document text budget per turn
}

type WebSocketConfig struct {
	MessageRateLimit string `toml:"message_rate_limit"` // min interval between inbound messages per connection, e.g. "500ms"
	MessageBurst     int    `toml:"message_burst"`      // burst allowance for the rate limiter
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for chat completions (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Chat completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for chat completions (default: "claude-3-5-haiku-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// SchedulerConfig controls background store maintenance
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron expression, default "@every 10m"
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 5000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path:           "./data/parley",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Upload: UploadConfig{
			MaxFileSize: 10 * 1024 * 1024,
		},
		Chat: ChatConfig{
			MaxHistoryMessages: 10,
			MaxContextChars:    8000,
		},
		WebSocket: WebSocketConfig{
			MessageRateLimit: "500ms",
			MessageBurst:     5,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "@every 10m",
		},
	}
}

// LoadFromFiles loads configuration with precedence:
// defaults -> config files (later files override earlier) -> environment
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks structural config constraints
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// applyEnvOverrides applies PARLEY_* environment variables over file config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PARLEY_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("PARLEY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PARLEY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if storageType := os.Getenv("PARLEY_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if path := os.Getenv("PARLEY_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if level := os.Getenv("PARLEY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("PARLEY_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("PARLEY_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("PARLEY_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key with precedence:
// environment variable -> KV store -> config fallback.
// A missing key is an error, never a silent fallback.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"PARLEY_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"PARLEY_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}
