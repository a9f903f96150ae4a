package config

import (
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if got := cfg.GetServerPort(); got != "8080" {
		t.Errorf("expected default port 8080, got %s", got)
	}
	if got := cfg.GetLogLevel(); got != "info" {
		t.Errorf("expected default log level info, got %s", got)
	}
	if got := cfg.GetChatModel(); got != "gpt-4o-mini" {
		t.Errorf("expected default chat model gpt-4o-mini, got %s", got)
	}
	if got := cfg.GetSTTModel(); got != "whisper-1" {
		t.Errorf("expected default STT model whisper-1, got %s", got)
	}
	if got := cfg.GetTTSModel(); got != "tts-1" {
		t.Errorf("expected default TTS model tts-1, got %s", got)
	}

	defaults := cfg.GetCreditDefaults()
	if defaults.TotalCredits != 70 {
		t.Errorf("expected 70 trial credits, got %d", defaults.TotalCredits)
	}
	if defaults.TotalAudioCredits != 14 {
		t.Errorf("expected 14 trial audio credits, got %d", defaults.TotalAudioCredits)
	}
	if defaults.TrialDuration != 7*24*time.Hour {
		t.Errorf("expected a 7 day trial, got %s", defaults.TrialDuration)
	}

	if got := cfg.GetDemoRequestLimit(); got != 5 {
		t.Errorf("expected demo limit 5, got %d", got)
	}
	if got := cfg.GetMaxAudioBytes(); got != 10*1024*1024 {
		t.Errorf("expected 10MB audio limit, got %d", got)
	}
	if got := cfg.GetVendorTimeout(); got != 120*time.Second {
		t.Errorf("expected 120s vendor timeout, got %s", got)
	}
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TRIAL_TOTAL_CREDITS", "100")
	t.Setenv("TRIAL_TOTAL_AUDIO_CREDITS", "20")
	t.Setenv("TRIAL_DURATION_DAYS", "14")
	t.Setenv("DEMO_REQUEST_LIMIT", "3")

	cfg := NewConfig()

	if got := cfg.GetServerPort(); got != "9090" {
		t.Errorf("expected port 9090, got %s", got)
	}
	defaults := cfg.GetCreditDefaults()
	if defaults.TotalCredits != 100 || defaults.TotalAudioCredits != 20 {
		t.Errorf("unexpected credit defaults: %+v", defaults)
	}
	if defaults.TrialDuration != 14*24*time.Hour {
		t.Errorf("expected a 14 day trial, got %s", defaults.TrialDuration)
	}
	if got := cfg.GetDemoRequestLimit(); got != 3 {
		t.Errorf("expected demo limit 3, got %d", got)
	}
}

func TestNewConfig_CloudRunPortWins(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("PORT", "8082")

	if got := NewConfig().GetServerPort(); got != "8082" {
		t.Errorf("expected PORT to take precedence, got %s", got)
	}
}

func TestNewConfig_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("TRIAL_TOTAL_CREDITS", "many")

	if got := NewConfig().GetCreditDefaults().TotalCredits; got != 70 {
		t.Errorf("expected fallback to 70, got %d", got)
	}
}
