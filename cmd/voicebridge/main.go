package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/antoniostano/voicebridge/internal/config"
	"github.com/antoniostano/voicebridge/internal/httpapi"
	"github.com/antoniostano/voicebridge/internal/observability"
	"github.com/antoniostano/voicebridge/internal/relay"
	"github.com/antoniostano/voicebridge/internal/session"
	"github.com/antoniostano/voicebridge/internal/speech"
	"github.com/antoniostano/voicebridge/internal/transcript"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := transcript.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("transcript store init failed: %v", err)
	}
	defer store.Close()

	var speechClient speech.Client

	tryHTTP := func() bool {
		if strings.TrimSpace(cfg.SpeechTranscribeURL) == "" || strings.TrimSpace(cfg.SpeechSynthesizeURL) == "" {
			return false
		}
		c, err := speech.NewHTTPClient(speech.HTTPConfig{
			TranscribeURL: cfg.SpeechTranscribeURL,
			SynthesizeURL: cfg.SpeechSynthesizeURL,
			APIKey:        cfg.SpeechAPIKey,
			Timeout:       cfg.SpeechTimeout,
		})
		if err != nil {
			log.Fatalf("speech client init failed: %v", err)
		}
		speechClient = c
		log.Printf("speech backend: http")
		return true
	}

	switch strings.ToLower(strings.TrimSpace(cfg.SpeechBackend)) {
	case "http":
		if !tryHTTP() {
			log.Fatalf("SPEECH_BACKEND=http but SPEECH_TRANSCRIBE_URL or SPEECH_SYNTHESIZE_URL is not set")
		}
	case "mock":
		speechClient = speech.NewMockClient()
		log.Printf("speech backend: mock")
	case "auto":
		if !tryHTTP() {
			speechClient = speech.NewMockClient()
			log.Printf("speech backend: mock (no speech endpoints configured)")
		}
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	gateway := relay.NewGateway(
		sessions,
		speechClient,
		speech.EchoResponder,
		store,
		metrics,
		relay.SettingsFromConfig(cfg),
	)

	api := httpapi.New(cfg, sessions, gateway, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
