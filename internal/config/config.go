package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Example posts
	PostsPath    string // Processed posts used for few-shot examples
	RawPostsPath string // Raw posts consumed by preprocess

	// Database
	DatabasePath string

	// VecLite
	VecLitePath   string // Path to VecLite database (default: data/posts.veclite)
	VecLiteConfig string // Optional veclite.yaml path

	// LLM
	LLMProvider string // "claude", "openai" or "groq" (default: groq)
	LLMModel    string
	LLMBaseURL  string
	LLMTimeout  time.Duration

	// API keys
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GroqAPIKey      string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		PostsPath:       getEnv("POSTS_PATH", "data/processed_posts.json"),
		RawPostsPath:    getEnv("RAW_POSTS_PATH", "data/raw_posts.json"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/postgen.db"),
		VecLitePath:     getEnv("VECLITE_PATH", "data/posts.veclite"),
		VecLiteConfig:   getEnv("VECLITE_CONFIG", ""),
		LLMProvider:     getEnv("LLM_PROVIDER", "groq"),
		LLMModel:        getEnv("LLM_MODEL", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.LLMTimeout, err = time.ParseDuration(getEnv("LLM_TIMEOUT", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.PostsPath == "" {
		return fmt.Errorf("POSTS_PATH is required")
	}
	return nil
}

// ValidateForHistory checks configuration needed for the history database.
func (c *Config) ValidateForHistory() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForGeneration checks configuration needed to call the LLM.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey() == "" {
		switch c.LLMProvider {
		case "claude":
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is claude")
		case "openai":
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is openai")
		case "groq", "":
			return fmt.Errorf("GROQ_API_KEY is required when LLM_PROVIDER is groq")
		default:
			return fmt.Errorf("invalid LLM_PROVIDER: %s (must be 'claude', 'openai' or 'groq')", c.LLMProvider)
		}
	}
	return nil
}

// ValidateForVecLite checks configuration needed for the similarity index.
func (c *Config) ValidateForVecLite() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.VecLitePath == "" {
		return fmt.Errorf("VECLITE_PATH is required")
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case "claude":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "groq", "":
		return c.GroqAPIKey
	default:
		return ""
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
