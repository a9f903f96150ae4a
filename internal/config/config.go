package config

import (
	"os"
	"strconv"
	"time"

	"language-coach-server/internal/domain"
)

// Defaults for the metered trial. The audio total had drifted between 7 and
// 14 across old call sites; 14 is the canonical value and both totals are
// overridable through the environment.
const (
	defaultTrialCredits      = 70
	defaultTrialAudioCredits = 14
	defaultTrialDays         = 7
	defaultDemoRequestLimit  = 5
	defaultMaxAudioBytes     = 10 * 1024 * 1024 // 10MB of decoded audio
	defaultVendorTimeout     = 120 * time.Second
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort       string
	LogLevel         string
	SupabaseURL      string
	SupabaseKey      string
	OpenAIKey        string
	ChatModel        string
	STTModel         string
	TTSModel         string
	CreditDefaults   domain.CreditDefaults
	DemoRequestLimit int
	MaxAudioBytes    int64
	VendorTimeout    time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL: getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey: getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		OpenAIKey:   getEnvOrDefault("OPENAI_API_KEY", ""),
		ChatModel:   getEnvOrDefault("CHAT_MODEL", "gpt-4o-mini"),
		STTModel:    getEnvOrDefault("STT_MODEL", "whisper-1"),
		TTSModel:    getEnvOrDefault("TTS_MODEL", "tts-1"),
		CreditDefaults: domain.CreditDefaults{
			TotalCredits:      getEnvIntOrDefault("TRIAL_TOTAL_CREDITS", defaultTrialCredits),
			TotalAudioCredits: getEnvIntOrDefault("TRIAL_TOTAL_AUDIO_CREDITS", defaultTrialAudioCredits),
			TrialDuration:     time.Duration(getEnvIntOrDefault("TRIAL_DURATION_DAYS", defaultTrialDays)) * 24 * time.Hour,
		},
		DemoRequestLimit: getEnvIntOrDefault("DEMO_REQUEST_LIMIT", defaultDemoRequestLimit),
		MaxAudioBytes:    getEnvInt64OrDefault("MAX_AUDIO_BYTES", defaultMaxAudioBytes),
		VendorTimeout:    time.Duration(getEnvIntOrDefault("VENDOR_TIMEOUT_SECONDS", int(defaultVendorTimeout/time.Second))) * time.Second,
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetOpenAIKey returns the AI vendor API key
func (c *AppConfig) GetOpenAIKey() string {
	return c.OpenAIKey
}

// GetChatModel returns the chat completion model name
func (c *AppConfig) GetChatModel() string {
	return c.ChatModel
}

// GetSTTModel returns the transcription model name
func (c *AppConfig) GetSTTModel() string {
	return c.STTModel
}

// GetTTSModel returns the speech synthesis model name
func (c *AppConfig) GetTTSModel() string {
	return c.TTSModel
}

// GetCreditDefaults returns the trial ledger defaults
func (c *AppConfig) GetCreditDefaults() domain.CreditDefaults {
	return c.CreditDefaults
}

// GetDemoRequestLimit returns the per-session demo request budget
func (c *AppConfig) GetDemoRequestLimit() int {
	return c.DemoRequestLimit
}

// GetMaxAudioBytes returns the maximum decoded audio upload size
func (c *AppConfig) GetMaxAudioBytes() int64 {
	return c.MaxAudioBytes
}

// GetVendorTimeout returns the per-request timeout for vendor calls
func (c *AppConfig) GetVendorTimeout() time.Duration {
	return c.VendorTimeout
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
