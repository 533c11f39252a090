// Package config provides configuration for the roundtable server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/xiaot623/gogo/roundtable/internal/adapter/llm"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort   int
	CORSOrigin string

	// Session store
	StoreDriver string
	DatabaseURL string

	// Providers
	Providers  llm.ProvidersConfig
	LLMTimeout time.Duration
	Mode       string

	// Credential validation
	ValidateConcurrency int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 5000),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
		StoreDriver: getEnv("STORE_DRIVER", "memory"),
		DatabaseURL: getEnv("DATABASE_URL", "file:roundtable?mode=memory&cache=shared"),
		Providers: llm.ProvidersConfig{
			OpenAI: llm.Endpoint{
				URL:   getEnv("OPENAI_URL", "https://api.openai.com/v1/chat/completions"),
				Model: getEnv("OPENAI_MODEL", "gpt-4o"),
			},
			Anthropic: llm.Endpoint{
				URL:   getEnv("ANTHROPIC_URL", "https://api.anthropic.com/v1/messages"),
				Model: getEnv("ANTHROPIC_MODEL", "claude-3-7-sonnet-20250219"),
			},
			AnthropicVersion: getEnv("ANTHROPIC_VERSION", "2023-06-01"),
			DeepSeek: llm.Endpoint{
				URL:   getEnv("DEEPSEEK_URL", "https://api.deepseek.com/v1/chat/completions"),
				Model: getEnv("DEEPSEEK_MODEL", "deepseek-reasoner"),
			},
		},
		LLMTimeout:          time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		Mode:                getEnv(llm.EnvMode, ""),
		ValidateConcurrency: getEnvInt("VALIDATE_CONCURRENCY", 4),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
