package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FrameBytes != 160 {
		t.Fatalf("FrameBytes = %d, want 160", cfg.FrameBytes)
	}
	if cfg.FrameInterval != 20*time.Millisecond {
		t.Fatalf("FrameInterval = %v, want 20ms", cfg.FrameInterval)
	}
	if cfg.ChunkWindowFrames != 75 {
		t.Fatalf("ChunkWindowFrames = %d, want 75", cfg.ChunkWindowFrames)
	}
	if cfg.MinVoicedFrames != 4 {
		t.Fatalf("MinVoicedFrames = %d, want 4", cfg.MinVoicedFrames)
	}
	if cfg.KeepaliveInterval != 15*time.Second {
		t.Fatalf("KeepaliveInterval = %v, want 15s", cfg.KeepaliveInterval)
	}
	if cfg.SpeechBackend != "auto" {
		t.Fatalf("SpeechBackend = %q, want %q", cfg.SpeechBackend, "auto")
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("AUDIO_CHUNK_WINDOW_FRAMES", "50")
	t.Setenv("AUDIO_VOICE_RMS_THRESHOLD", "750.5")
	t.Setenv("SPEECH_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.ChunkWindowFrames != 50 {
		t.Fatalf("ChunkWindowFrames = %d, want 50", cfg.ChunkWindowFrames)
	}
	if cfg.VoiceRMSThreshold != 750.5 {
		t.Fatalf("VoiceRMSThreshold = %v, want 750.5", cfg.VoiceRMSThreshold)
	}
	if cfg.SpeechTimeout != 5*time.Second {
		t.Fatalf("SpeechTimeout = %v, want 5s", cfg.SpeechTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"APP_SESSION_INACTIVITY_TIMEOUT", "1s"},
		{"AUDIO_FRAME_BYTES", "0"},
		{"AUDIO_FRAME_INTERVAL", "0s"},
		{"AUDIO_CHUNK_WINDOW_FRAMES", "-1"},
		{"AUDIO_MAX_UTTERANCE_FRAMES", "10"},
		{"SPEECH_BACKEND", "carrier-pigeon"},
		{"AUDIO_VOICE_RMS_THRESHOLD", "not-a-number"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_KEEPALIVE_INTERVAL",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_GREETING",
		"AUDIO_SAMPLE_RATE",
		"AUDIO_FRAME_BYTES",
		"AUDIO_FRAME_INTERVAL",
		"AUDIO_CHUNK_WINDOW_FRAMES",
		"AUDIO_MIN_VOICED_FRAMES",
		"AUDIO_VOICE_RMS_THRESHOLD",
		"AUDIO_MAX_UTTERANCE_FRAMES",
		"SPEECH_BACKEND",
		"SPEECH_TRANSCRIBE_URL",
		"SPEECH_SYNTHESIZE_URL",
		"SPEECH_API_KEY",
		"SPEECH_TIMEOUT",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
