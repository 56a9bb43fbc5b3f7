// Package transcript persists the text of a call: what the caller said and
// what the assistant replied. Audio is never stored.
package transcript

import (
	"context"
	"time"
)

// Speaker roles for an utterance record.
const (
	RoleCaller    = "caller"
	RoleAssistant = "assistant"
)

// UtteranceRecord stores one transcribed caller utterance or assistant reply.
type UtteranceRecord struct {
	ID        string    `json:"id"`
	CallSID   string    `json:"call_sid"`
	StreamSID string    `json:"stream_sid"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves call transcripts.
type Store interface {
	SaveUtterance(ctx context.Context, record UtteranceRecord) error
	RecentByCall(ctx context.Context, callSID string, limit int) ([]UtteranceRecord, error)
	Close() error
}
