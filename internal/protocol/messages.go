// Package protocol defines the JSON messages exchanged on the telephony
// media-stream websocket.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType identifies media-stream payload variants.
type EventType string

const (
	EventConnected EventType = "connected"
	EventStart     EventType = "start"
	EventMedia     EventType = "media"
	EventStop      EventType = "stop"
	EventMark      EventType = "mark"
	EventDTMF      EventType = "dtmf"
	EventClear     EventType = "clear"
)

var ErrMissingEvent = errors.New("missing event discriminator")

type Envelope struct {
	Event EventType `json:"event"`
}

// Connected is the first message the provider sends after the socket opens.
type Connected struct {
	Event    EventType `json:"event"`
	Protocol string    `json:"protocol"`
	Version  string    `json:"version"`
}

// MediaFormat describes the audio encoding negotiated for the stream.
type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

// StartPayload carries the call and stream identifiers.
type StartPayload struct {
	AccountSID  string      `json:"accountSid"`
	CallSID     string      `json:"callSid"`
	StreamSID   string      `json:"streamSid"`
	Tracks      []string    `json:"tracks"`
	MediaFormat MediaFormat `json:"mediaFormat"`
}

// Start activates the session and carries the stream identifier used on
// every subsequent outbound message.
type Start struct {
	Event          EventType    `json:"event"`
	SequenceNumber string       `json:"sequenceNumber"`
	StreamSID      string       `json:"streamSid"`
	Start          StartPayload `json:"start"`
}

// MediaPayload carries one base64-encoded mu-law frame.
type MediaPayload struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

// Media carries caller audio inbound and synthesized audio outbound.
type Media struct {
	Event          EventType    `json:"event"`
	SequenceNumber string       `json:"sequenceNumber,omitempty"`
	StreamSID      string       `json:"streamSid"`
	Media          MediaPayload `json:"media"`
}

// Stop terminates the stream's active processing.
type Stop struct {
	Event          EventType `json:"event"`
	SequenceNumber string    `json:"sequenceNumber,omitempty"`
	StreamSID      string    `json:"streamSid"`
}

// MarkPayload names a playback marker.
type MarkPayload struct {
	Name string `json:"name"`
}

// Mark is echoed by the provider when queued audio has played out; we also
// send it outbound as a keepalive probe.
type Mark struct {
	Event     EventType   `json:"event"`
	StreamSID string      `json:"streamSid"`
	Mark      MarkPayload `json:"mark"`
}

// DTMFPayload carries one keypad digit.
type DTMFPayload struct {
	Track string `json:"track,omitempty"`
	Digit string `json:"digit"`
}

// DTMF reports a keypad press. Logged only; no pipeline effect.
type DTMF struct {
	Event     EventType   `json:"event"`
	StreamSID string      `json:"streamSid"`
	DTMF      DTMFPayload `json:"dtmf"`
}

// Clear asks the provider to drop any audio it has buffered but not played.
type Clear struct {
	Event     EventType `json:"event"`
	StreamSID string    `json:"streamSid"`
}

// Unknown wraps an event we do not act on, keeping its name for logging.
type Unknown struct {
	Event EventType
	Raw   []byte
}

// ParseInbound decodes one provider message. Unrecognized but well-formed
// events come back as Unknown so callers can count them without failing
// the session.
func ParseInbound(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	if env.Event == "" {
		return nil, ErrMissingEvent
	}

	switch env.Event {
	case EventConnected:
		var msg Connected
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case EventStart:
		var msg Start
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Start.StreamSID == "" && msg.StreamSID == "" {
			return nil, errors.New("start without stream sid")
		}
		if msg.Start.StreamSID == "" {
			msg.Start.StreamSID = msg.StreamSID
		}
		return msg, nil
	case EventMedia:
		var msg Media
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Media.Payload == "" {
			return nil, errors.New("media without payload")
		}
		return msg, nil
	case EventStop:
		var msg Stop
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case EventMark:
		var msg Mark
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case EventDTMF:
		var msg DTMF
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return Unknown{Event: env.Event, Raw: raw}, nil
	}
}

// OutboundMedia builds a media message for one encoded frame payload.
func OutboundMedia(streamSID, payloadBase64 string) Media {
	return Media{
		Event:     EventMedia,
		StreamSID: streamSID,
		Media:     MediaPayload{Payload: payloadBase64},
	}
}

// OutboundMark builds a named marker message.
func OutboundMark(streamSID, name string) Mark {
	return Mark{
		Event:     EventMark,
		StreamSID: streamSID,
		Mark:      MarkPayload{Name: name},
	}
}
