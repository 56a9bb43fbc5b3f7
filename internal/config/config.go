package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the media-stream relay service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	// Audio pipeline tunables. Injected everywhere so tests can run with
	// their own values in parallel.
	SampleRate         int
	FrameBytes         int
	FrameInterval      time.Duration
	ChunkWindowFrames  int
	MinVoicedFrames    int
	VoiceRMSThreshold  float64
	MaxUtteranceFrames int
	KeepaliveInterval  time.Duration

	Greeting string

	SpeechBackend       string
	SpeechTranscribeURL string
	SpeechSynthesizeURL string
	SpeechAPIKey        string
	SpeechTimeout       time.Duration

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "voicebridge"),
		AllowAnyOrigin:   false,

		SampleRate: 8000,
		// 160 mu-law bytes is 20 ms at 8 kHz; the provider sends and
		// expects exactly this cadence.
		FrameBytes:    160,
		FrameInterval: 20 * time.Millisecond,
		// ~1500 ms between flush attempts.
		ChunkWindowFrames: 75,
		// Below ~80 ms of voiced audio the buffer is discarded as noise.
		MinVoicedFrames:   4,
		VoiceRMSThreshold: 500,
		// Hard cap of 30 s of buffered speech; oldest frames drop first.
		MaxUtteranceFrames: 1500,
		KeepaliveInterval:  15 * time.Second,

		Greeting: envOrDefault("APP_GREETING", "Hello! How can I help you today?"),

		SpeechBackend:       envOrDefault("SPEECH_BACKEND", "auto"),
		SpeechTranscribeURL: stringsTrimSpace("SPEECH_TRANSCRIBE_URL"),
		SpeechSynthesizeURL: stringsTrimSpace("SPEECH_SYNTHESIZE_URL"),
		SpeechAPIKey:        stringsTrimSpace("SPEECH_API_KEY"),
		SpeechTimeout:       30 * time.Second,

		DatabaseURL: stringsTrimSpace("DATABASE_URL"),

		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 2 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.KeepaliveInterval, err = durationFromEnv("APP_KEEPALIVE_INTERVAL", cfg.KeepaliveInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	cfg.SampleRate, err = intFromEnv("AUDIO_SAMPLE_RATE", cfg.SampleRate)
	if err != nil {
		return Config{}, err
	}
	cfg.FrameBytes, err = intFromEnv("AUDIO_FRAME_BYTES", cfg.FrameBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.FrameInterval, err = durationFromEnv("AUDIO_FRAME_INTERVAL", cfg.FrameInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.ChunkWindowFrames, err = intFromEnv("AUDIO_CHUNK_WINDOW_FRAMES", cfg.ChunkWindowFrames)
	if err != nil {
		return Config{}, err
	}
	cfg.MinVoicedFrames, err = intFromEnv("AUDIO_MIN_VOICED_FRAMES", cfg.MinVoicedFrames)
	if err != nil {
		return Config{}, err
	}
	cfg.VoiceRMSThreshold, err = floatFromEnv("AUDIO_VOICE_RMS_THRESHOLD", cfg.VoiceRMSThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxUtteranceFrames, err = intFromEnv("AUDIO_MAX_UTTERANCE_FRAMES", cfg.MaxUtteranceFrames)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechTimeout, err = durationFromEnv("SPEECH_TIMEOUT", cfg.SpeechTimeout)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.SampleRate <= 0 {
		return Config{}, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive")
	}
	if cfg.FrameBytes <= 0 {
		return Config{}, fmt.Errorf("AUDIO_FRAME_BYTES must be positive")
	}
	if cfg.FrameInterval <= 0 {
		return Config{}, fmt.Errorf("AUDIO_FRAME_INTERVAL must be positive")
	}
	if cfg.ChunkWindowFrames <= 0 {
		return Config{}, fmt.Errorf("AUDIO_CHUNK_WINDOW_FRAMES must be positive")
	}
	if cfg.MinVoicedFrames < 0 {
		return Config{}, fmt.Errorf("AUDIO_MIN_VOICED_FRAMES must be >= 0")
	}
	if cfg.VoiceRMSThreshold < 0 {
		return Config{}, fmt.Errorf("AUDIO_VOICE_RMS_THRESHOLD must be >= 0")
	}
	if cfg.MaxUtteranceFrames < cfg.ChunkWindowFrames {
		return Config{}, fmt.Errorf("AUDIO_MAX_UTTERANCE_FRAMES must be >= AUDIO_CHUNK_WINDOW_FRAMES")
	}
	if cfg.SpeechTimeout <= 0 {
		return Config{}, fmt.Errorf("SPEECH_TIMEOUT must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.SpeechBackend)) {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("invalid SPEECH_BACKEND: %q (expected auto|http|mock)", cfg.SpeechBackend)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
