package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
	LLM      LLMConfig
	Notion   NotionConfig
	Dropbox  DropboxConfig
	Logging  LoggingConfig
}

// ServerConfig holds dashboard server configuration
type ServerConfig struct {
	HTTPAddr string
}

// DatabaseConfig holds the local history database configuration
type DatabaseConfig struct {
	Path string
}

// IngestConfig holds local inbox watching configuration
type IngestConfig struct {
	InboxDir    string
	InitialScan bool
	Debounce    time.Duration
}

// ProviderConfig is the per-provider slice of LLMConfig. An empty APIKey
// means the provider is not configured and is skipped, not failed.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// LLMConfig holds AI provider configuration
type LLMConfig struct {
	OpenAI     ProviderConfig
	Anthropic  ProviderConfig
	Gemini     ProviderConfig
	PromptPath string
	Timeout    time.Duration
}

// NotionConfig holds remote document store configuration
type NotionConfig struct {
	Token        string
	BaseURL      string
	ParentPageID string
	ChunkLimit   int
	Timeout      time.Duration
}

// DropboxConfig holds remote file source configuration
type DropboxConfig struct {
	Token           string
	Folder          string
	PollInterval    time.Duration
	LongPollTimeout time.Duration
}

// LoggingConfig holds log output configuration
type LoggingConfig struct {
	File  string
	Level slog.Level
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is folded in first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./clinicnote.db"),
		},
		Ingest: IngestConfig{
			InboxDir:    getEnv("INBOX_DIR", ""),
			InitialScan: getEnvAsBool("INBOX_INITIAL_SCAN", true),
			Debounce:    getEnvAsDuration("INBOX_DEBOUNCE", 2*time.Second),
		},
		LLM: LLMConfig{
			OpenAI: ProviderConfig{
				APIKey:      getEnv("OPENAI_API_KEY", ""),
				BaseURL:     getEnv("OPENAI_BASE_URL", ""),
				Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 4000),
				Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
			},
			Anthropic: ProviderConfig{
				APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL:     getEnv("ANTHROPIC_BASE_URL", ""),
				Model:       getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
				MaxTokens:   getEnvAsInt("ANTHROPIC_MAX_TOKENS", 4000),
				Temperature: getEnvAsFloat32("ANTHROPIC_TEMPERATURE", 0.3),
			},
			Gemini: ProviderConfig{
				APIKey:      getEnv("GEMINI_API_KEY", ""),
				BaseURL:     getEnv("GEMINI_BASE_URL", ""),
				Model:       getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
				MaxTokens:   getEnvAsInt("GEMINI_MAX_TOKENS", 4000),
				Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.3),
			},
			PromptPath: getEnv("PROMPT_PATH", ""),
			Timeout:    getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
		},
		Notion: NotionConfig{
			Token:        getEnv("NOTION_TOKEN", ""),
			BaseURL:      getEnv("NOTION_BASE_URL", ""),
			ParentPageID: getEnv("NOTION_PARENT_PAGE_ID", ""),
			ChunkLimit:   getEnvAsInt("NOTION_CHUNK_LIMIT", 2000),
			Timeout:      getEnvAsDuration("NOTION_TIMEOUT", 30*time.Second),
		},
		Dropbox: DropboxConfig{
			Token:           getEnv("DROPBOX_TOKEN", ""),
			Folder:          getEnv("DROPBOX_FOLDER", "/transcripts"),
			PollInterval:    getEnvAsDuration("DROPBOX_POLL_INTERVAL", 60*time.Second),
			LongPollTimeout: getEnvAsDuration("DROPBOX_LONGPOLL_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			File:  getEnv("LOG_FILE", ""),
			Level: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfiguredProviders reports which AI providers have an API key set.
func (c *Config) ConfiguredProviders() []string {
	var names []string
	if c.LLM.OpenAI.APIKey != "" {
		names = append(names, "openai")
	}
	if c.LLM.Anthropic.APIKey != "" {
		names = append(names, "anthropic")
	}
	if c.LLM.Gemini.APIKey != "" {
		names = append(names, "gemini")
	}
	return names
}

// Validate validates the loaded configuration. Missing providers or store
// credentials are a startup failure, surfaced distinctly from per-file
// runtime errors.
func (c *Config) Validate() error {
	if len(c.ConfiguredProviders()) == 0 {
		return NewAppError("CONFIG_ERROR", "at least one AI provider API key is required", ErrConfigurationMissing)
	}
	if c.Notion.Token == "" {
		return NewAppError("CONFIG_ERROR", "NOTION_TOKEN is required", ErrConfigurationMissing)
	}
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrConfigurationMissing)
	}
	return nil
}
