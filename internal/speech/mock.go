package speech

import (
	"context"
	"sync"
)

// MockClient is a deterministic in-process backend used when no speech
// endpoint is configured, and by tests.
type MockClient struct {
	mu          sync.Mutex
	transcripts []string

	// Transcript is returned by every Transcribe call. Defaults to a
	// fixed phrase.
	Transcript string
	// ReplyAudio is returned by every Synthesize call. Defaults to one
	// second of mu-law silence.
	ReplyAudio []byte
}

func NewMockClient() *MockClient {
	audio := make([]byte, 8000)
	for i := range audio {
		audio[i] = 0xFF
	}
	return &MockClient{
		Transcript: "simulated caller speech",
		ReplyAudio: audio,
	}
}

func (m *MockClient) Transcribe(_ context.Context, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts = append(m.transcripts, m.Transcript)
	return m.Transcript, nil
}

func (m *MockClient) Synthesize(_ context.Context, _ string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.ReplyAudio))
	copy(out, m.ReplyAudio)
	return out, nil
}

// TranscribeCalls reports how many transcriptions were requested.
func (m *MockClient) TranscribeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transcripts)
}
