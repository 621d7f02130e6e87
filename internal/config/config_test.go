package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai", cfg.Gemini.BaseURL)
	require.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	require.Equal(t, 170, cfg.Gemini.MaxTokens)
	require.InDelta(t, 0.3, cfg.Gemini.Temperature, 1e-9)
	require.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	require.Equal(t, 465, cfg.SMTP.Port)
	require.Equal(t, "./data/chat_history.db", cfg.SessionDBPath)
	require.Equal(t, 2000, cfg.MaxMessageLength)
	require.Equal(t, 20, cfg.MaxContextTurns)
	require.Zero(t, cfg.MaxConversationTurns)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://umerali.dev, https://www.umerali.dev")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")
	t.Setenv("GEMINI_MAX_TOKENS", "256")
	t.Setenv("GEMINI_TEMPERATURE", "0.7")
	t.Setenv("SMTP_PORT", "2465")
	t.Setenv("MAX_MESSAGE_LENGTH", "500")
	t.Setenv("MAX_CONVERSATION_TURNS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, []string{"https://umerali.dev", "https://www.umerali.dev"}, cfg.AllowedOrigins)
	require.Equal(t, "test-key", cfg.Gemini.APIKey)
	require.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	require.Equal(t, 256, cfg.Gemini.MaxTokens)
	require.InDelta(t, 0.7, cfg.Gemini.Temperature, 1e-9)
	require.Equal(t, 2465, cfg.SMTP.Port)
	require.Equal(t, 500, cfg.MaxMessageLength)
	require.Equal(t, 50, cfg.MaxConversationTurns)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("GEMINI_MAX_TOKENS", "not-a-number")
	t.Setenv("SMTP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 170, cfg.Gemini.MaxTokens)
	require.Equal(t, 465, cfg.SMTP.Port)
}

func TestLoad_MissingCredentialsIsNotAnError(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.GeminiConfigured())
	require.False(t, cfg.GmailConfigured())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }, wantErr: "PORT"},
		{name: "empty base url", mutate: func(c *Config) { c.Gemini.BaseURL = "" }, wantErr: "GEMINI_BASE_URL"},
		{name: "empty model", mutate: func(c *Config) { c.Gemini.Model = "" }, wantErr: "GEMINI_MODEL"},
		{name: "empty smtp host", mutate: func(c *Config) { c.SMTP.Host = "" }, wantErr: "SMTP_HOST"},
		{name: "zero smtp port", mutate: func(c *Config) { c.SMTP.Port = 0 }, wantErr: "SMTP_PORT"},
		{name: "empty db path", mutate: func(c *Config) { c.SessionDBPath = "" }, wantErr: "SESSION_DB_PATH"},
		{name: "zero message limit", mutate: func(c *Config) { c.MaxMessageLength = 0 }, wantErr: "MAX_MESSAGE_LENGTH"},
		{name: "zero context turns", mutate: func(c *Config) { c.MaxContextTurns = 0 }, wantErr: "MAX_CONTEXT_TURNS"},
		{name: "negative conversation turns", mutate: func(c *Config) { c.MaxConversationTurns = -1 }, wantErr: "MAX_CONVERSATION_TURNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfiguredBooleans(t *testing.T) {
	cfg := &Config{}
	require.False(t, cfg.GeminiConfigured())
	require.False(t, cfg.GmailConfigured())

	cfg.Gemini.APIKey = "  "
	require.False(t, cfg.GeminiConfigured())
	cfg.Gemini.APIKey = "key"
	require.True(t, cfg.GeminiConfigured())

	cfg.Gmail.Address = "me@gmail.com"
	require.False(t, cfg.GmailConfigured(), "both secrets are required")
	cfg.Gmail.AppPassword = "app-pass"
	require.True(t, cfg.GmailConfigured())
}

func TestSplitOrigins(t *testing.T) {
	require.Equal(t, []string{"*"}, splitOrigins("*"))
	require.Equal(t, []string{"*"}, splitOrigins(" , ,"))
	require.Equal(t, []string{"a", "b"}, splitOrigins("a, b"))
}
