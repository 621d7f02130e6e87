// Package config provides application configuration read from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// GeminiConfig holds model-provider settings.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GmailConfig holds the mail account credentials.
type GmailConfig struct {
	Address     string
	AppPassword string
}

// SMTPConfig holds the mail relay endpoint.
type SMTPConfig struct {
	Host string
	Port int
}

// Config holds all application configuration.
type Config struct {
	Port             string
	AllowedOrigins   []string
	Gemini           GeminiConfig
	Gmail            GmailConfig
	SMTP             SMTPConfig
	SessionDBPath    string
	MaxMessageLength int
	MaxContextTurns  int
	// MaxConversationTurns caps the turns accepted per conversation.
	// Zero means unlimited.
	MaxConversationTurns int
}

// Load reads configuration from environment variables. Missing credentials
// are not an error here: the process must start and the affected endpoint
// degrades until the secret is provided.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		Gemini: GeminiConfig{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			MaxTokens:   getEnvInt("GEMINI_MAX_TOKENS", 170),
			Temperature: getEnvFloat("GEMINI_TEMPERATURE", 0.3),
		},
		Gmail: GmailConfig{
			Address:     os.Getenv("GMAIL_ADDRESS"),
			AppPassword: os.Getenv("GMAIL_APP_PASSWORD"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port: getEnvInt("SMTP_PORT", 465),
		},
		SessionDBPath:        getEnv("SESSION_DB_PATH", "./data/chat_history.db"),
		MaxMessageLength:     getEnvInt("MAX_MESSAGE_LENGTH", 2000),
		MaxContextTurns:      getEnvInt("MAX_CONTEXT_TURNS", 20),
		MaxConversationTurns: getEnvInt("MAX_CONVERSATION_TURNS", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that must always be usable. Credentials are
// deliberately excluded; their presence is reported by the health endpoint.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Gemini.BaseURL == "" {
		return fmt.Errorf("GEMINI_BASE_URL cannot be empty")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}
	if c.SMTP.Host == "" {
		return fmt.Errorf("SMTP_HOST cannot be empty")
	}
	if c.SMTP.Port <= 0 {
		return fmt.Errorf("SMTP_PORT must be > 0")
	}
	if c.SessionDBPath == "" {
		return fmt.Errorf("SESSION_DB_PATH cannot be empty")
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be > 0")
	}
	if c.MaxContextTurns <= 0 {
		return fmt.Errorf("MAX_CONTEXT_TURNS must be > 0")
	}
	if c.MaxConversationTurns < 0 {
		return fmt.Errorf("MAX_CONVERSATION_TURNS must be >= 0")
	}
	return nil
}

// GeminiConfigured reports whether the model-provider credential is present.
func (c *Config) GeminiConfigured() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// GmailConfigured reports whether both mail secrets are present.
func (c *Config) GmailConfigured() bool {
	return strings.TrimSpace(c.Gmail.Address) != "" && strings.TrimSpace(c.Gmail.AppPassword) != ""
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
