// Package speech defines the transcription and synthesis backend consumed
// by the relay, plus HTTP and mock implementations.
package speech

import "context"

// Client is the speech backend: audio in, text out and back again. Both
// calls are network round trips with their own latency and failure modes;
// the relay treats them as black boxes.
type Client interface {
	// Transcribe uploads a WAV-wrapped utterance and returns its text.
	Transcribe(ctx context.Context, wav []byte) (string, error)
	// Synthesize returns reply audio for text, preferably raw mu-law at
	// 8 kHz; backends that only produce WAV are unwrapped by the caller.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Responder produces the reply text for a caller utterance. The relay only
// moves audio; what the assistant says is the application's business.
type Responder func(ctx context.Context, transcript string) (string, error)

// EchoResponder repeats the caller's words back. Default reply logic for
// development and tests.
func EchoResponder(_ context.Context, transcript string) (string, error) {
	return "You said: " + transcript, nil
}
