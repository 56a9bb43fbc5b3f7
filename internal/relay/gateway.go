// Package relay contains the real-time audio pipeline: per-connection event
// loop, inbound utterance buffering, and outbound frame pacing.
package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/antoniostano/voicebridge/internal/codec"
	"github.com/antoniostano/voicebridge/internal/config"
	"github.com/antoniostano/voicebridge/internal/observability"
	"github.com/antoniostano/voicebridge/internal/protocol"
	"github.com/antoniostano/voicebridge/internal/session"
	"github.com/antoniostano/voicebridge/internal/speech"
	"github.com/antoniostano/voicebridge/internal/transcript"
	"github.com/antoniostano/voicebridge/internal/vad"
)

const transcriptSaveTimeout = 2 * time.Second

// Settings are the audio pipeline tunables, injected so tests can run with
// their own values in parallel.
type Settings struct {
	SampleRate         int
	FrameBytes         int
	FrameInterval      time.Duration
	ChunkWindowFrames  int
	MinVoicedFrames    int
	VoiceRMSThreshold  float64
	MaxUtteranceFrames int
	KeepaliveInterval  time.Duration
	SpeechTimeout      time.Duration
	Greeting           string
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		SampleRate:         cfg.SampleRate,
		FrameBytes:         cfg.FrameBytes,
		FrameInterval:      cfg.FrameInterval,
		ChunkWindowFrames:  cfg.ChunkWindowFrames,
		MinVoicedFrames:    cfg.MinVoicedFrames,
		VoiceRMSThreshold:  cfg.VoiceRMSThreshold,
		MaxUtteranceFrames: cfg.MaxUtteranceFrames,
		KeepaliveInterval:  cfg.KeepaliveInterval,
		SpeechTimeout:      cfg.SpeechTimeout,
		Greeting:           cfg.Greeting,
	}
}

// Gateway drives one event loop per media-stream connection.
type Gateway struct {
	sessions *session.Manager
	speech   speech.Client
	respond  speech.Responder
	store    transcript.Store
	metrics  *observability.Metrics
	settings Settings
}

func NewGateway(
	sessions *session.Manager,
	speechClient speech.Client,
	respond speech.Responder,
	store transcript.Store,
	metrics *observability.Metrics,
	settings Settings,
) *Gateway {
	if respond == nil {
		respond = speech.EchoResponder
	}
	return &Gateway{
		sessions: sessions,
		speech:   speechClient,
		respond:  respond,
		store:    store,
		metrics:  metrics,
		settings: settings,
	}
}

type completionKind int

const (
	transcriptionDone completionKind = iota
	synthesisDone
)

// completion re-enters a finished backend call into the connection loop so
// session state is only ever touched from one goroutine.
type completion struct {
	kind    completionKind
	text    string
	err     error
	elapsed time.Duration
}

// RunConnection consumes one connection's inbound events until the stream
// stops, the inbound channel closes, or ctx is cancelled. All per-session
// pipeline state lives on this goroutine's stack; backend calls run on
// worker goroutines and report back through the completions channel.
func (g *Gateway) RunConnection(ctx context.Context, s *session.Session, inbound <-chan any, outbound chan<- any) error {
	gate := vad.NewGate(g.settings.VoiceRMSThreshold)
	utt := newUtterance(g.settings.FrameBytes, g.settings.MaxUtteranceFrames)

	var (
		streaming      bool
		streamSID      string
		callSID        string
		streamStartAt  time.Time
		firstReplySeen bool
		transcribing   bool
		synthesizing   bool
	)

	// At most one transcription and one synthesis outcome can be pending,
	// so a buffer of two keeps worker sends from ever blocking even after
	// this loop has returned.
	completions := make(chan completion, 2)

	var keepalive *time.Ticker
	var keepaliveC <-chan time.Time
	defer func() {
		if keepalive != nil {
			keepalive.Stop()
		}
	}()

	startSynthesis := func(text string) bool {
		if synthesizing || strings.TrimSpace(text) == "" {
			return false
		}
		synthesizing = true
		sid := streamSID
		go func() {
			err := g.synthesizeAndSend(ctx, sid, text, outbound)
			completions <- completion{kind: synthesisDone, err: err}
		}()
		return true
	}

	flushIfReady := func() {
		if transcribing || utt.frameCount < g.settings.ChunkWindowFrames {
			return
		}
		if utt.voicedCount < g.settings.MinVoicedFrames {
			// Too little speech in the window; discard as noise.
			utt.reset()
			return
		}
		samples := utt.take()
		transcribing = true
		g.metrics.SessionEvents.WithLabelValues("utterance_flush").Inc()
		go func() {
			start := time.Now()
			text, err := g.transcribeSamples(ctx, samples)
			completions <- completion{kind: transcriptionDone, text: text, err: err, elapsed: time.Since(start)}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			g.closeSession(s.ID)
			return nil

		case <-keepaliveC:
			select {
			case outbound <- protocol.OutboundMark(streamSID, "keepalive"):
				g.metrics.WSMessages.WithLabelValues("outbound", "mark").Inc()
			case <-ctx.Done():
				g.closeSession(s.ID)
				return nil
			}

		case c := <-completions:
			switch c.kind {
			case transcriptionDone:
				transcribing = false
				if c.err != nil {
					// Abandon the attempt; the caller hears silence and
					// the session keeps listening.
					g.metrics.BackendErrors.WithLabelValues("transcribe", "request_failed").Inc()
					log.Printf("session %s: transcription failed: %v", s.ID, c.err)
				} else {
					g.metrics.ObserveTranscriptionLatency(c.elapsed)
					g.handleTranscript(ctx, s.ID, callSID, streamSID, c.text, startSynthesis)
				}
				// Frames kept accumulating during the in-flight call; a
				// full window may already be waiting.
				if streaming {
					flushIfReady()
				}
			case synthesisDone:
				synthesizing = false
				switch {
				case c.err == nil:
					if !firstReplySeen {
						firstReplySeen = true
						g.metrics.ObserveFirstReplyLatency(time.Since(streamStartAt))
					}
				case errors.Is(c.err, context.Canceled):
					// Connection went away mid-send.
				default:
					g.metrics.BackendErrors.WithLabelValues("synthesize", "request_failed").Inc()
					log.Printf("session %s: synthesis failed: %v", s.ID, c.err)
				}
			}

		case msg, ok := <-inbound:
			if !ok {
				g.closeSession(s.ID)
				return nil
			}
			switch m := msg.(type) {
			case protocol.Start:
				if streaming {
					continue
				}
				streaming = true
				streamSID = m.Start.StreamSID
				callSID = m.Start.CallSID
				streamStartAt = time.Now()
				if err := g.sessions.Activate(s.ID, callSID, streamSID); err != nil {
					log.Printf("session %s: activate: %v", s.ID, err)
				}
				keepalive = time.NewTicker(g.settings.KeepaliveInterval)
				keepaliveC = keepalive.C
				g.metrics.SessionEvents.WithLabelValues("stream_start").Inc()
				log.Printf("session %s: stream started call=%s stream=%s", s.ID, callSID, streamSID)
				startSynthesis(g.settings.Greeting)

			case protocol.Media:
				if !streaming {
					continue
				}
				_ = g.sessions.Touch(s.ID)
				frame, err := base64.StdEncoding.DecodeString(m.Media.Payload)
				if err != nil {
					// Malformed payloads are dropped; the session continues.
					continue
				}
				g.metrics.FramesRelayed.WithLabelValues("inbound").Inc()
				samples := codec.DecodeFrame(frame)
				utt.observe(samples, gate.IsVoiced(samples))
				if utt.frameCount%g.settings.ChunkWindowFrames == 0 {
					flushIfReady()
				}

			case protocol.Stop:
				g.metrics.SessionEvents.WithLabelValues("stream_stop").Inc()
				log.Printf("session %s: stream stopped", s.ID)
				g.closeSession(s.ID)
				return nil

			case protocol.Mark:
				// Playback acknowledgment from the provider.
				g.metrics.WSMessages.WithLabelValues("inbound", "mark").Inc()

			case protocol.DTMF:
				log.Printf("session %s: dtmf digit %q", s.ID, m.DTMF.Digit)

			case protocol.Connected:
				g.metrics.WSMessages.WithLabelValues("inbound", "connected").Inc()

			case protocol.Unknown:
				g.metrics.WSMessages.WithLabelValues("inbound", "unknown").Inc()
				log.Printf("session %s: ignoring event %q", s.ID, m.Event)
			}
		}
	}
}

// handleTranscript persists the caller's words, asks the responder for a
// reply, and starts synthesis unless one is already in flight.
func (g *Gateway) handleTranscript(ctx context.Context, sessionID, callSID, streamSID, text string, startSynthesis func(string) bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	log.Printf("session %s: caller said %q", sessionID, text)
	g.saveUtteranceBestEffort(callSID, streamSID, transcript.RoleCaller, text)

	reply, err := g.respond(ctx, text)
	if err != nil {
		g.metrics.BackendErrors.WithLabelValues("respond", "request_failed").Inc()
		log.Printf("session %s: responder failed: %v", sessionID, err)
		return
	}
	if startSynthesis(reply) {
		g.saveUtteranceBestEffort(callSID, streamSID, transcript.RoleAssistant, reply)
	}
}

func (g *Gateway) transcribeSamples(ctx context.Context, samples []int16) (string, error) {
	wav, err := codec.EncodeWAV(samples, g.settings.SampleRate)
	if err != nil {
		return "", fmt.Errorf("wrap wav: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, g.settings.SpeechTimeout)
	defer cancel()
	return g.speech.Transcribe(callCtx, wav)
}

// synthesizeAndSend fetches reply audio and streams it out at frame cadence.
// The synthesis flag stays set in the caller until this returns, which is
// what makes reply playback single-flight.
func (g *Gateway) synthesizeAndSend(ctx context.Context, streamSID, text string, outbound chan<- any) error {
	callCtx, cancel := context.WithTimeout(ctx, g.settings.SpeechTimeout)
	audio, err := g.speech.Synthesize(callCtx, text)
	cancel()
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	audio = normalizeReplyAudio(audio)
	sent, err := sendPaced(ctx, streamSID, audio, outbound, g.settings.FrameBytes, g.settings.FrameInterval)
	g.metrics.FramesRelayed.WithLabelValues("outbound").Add(float64(sent))
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// normalizeReplyAudio accepts either raw mu-law bytes or a WAV container of
// linear PCM16 and returns mu-law bytes either way.
func normalizeReplyAudio(audio []byte) []byte {
	if len(audio) < 12 || string(audio[0:4]) != "RIFF" {
		return audio
	}
	return codec.EncodePCM16LE(codec.UnwrapWAV(audio))
}

func (g *Gateway) saveUtteranceBestEffort(callSID, streamSID, role, text string) {
	if g.store == nil {
		return
	}
	redacted, _ := transcript.RedactPII(text)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), transcriptSaveTimeout)
		defer cancel()
		err := g.store.SaveUtterance(ctx, transcript.UtteranceRecord{
			CallSID:   callSID,
			StreamSID: streamSID,
			Role:      role,
			Text:      redacted,
		})
		if err != nil {
			log.Printf("transcript save failed call=%s: %v", callSID, err)
		}
	}()
}

func (g *Gateway) closeSession(sessionID string) {
	if _, err := g.sessions.Close(sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		log.Printf("session %s: close: %v", sessionID, err)
	}
}
