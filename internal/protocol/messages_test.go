package protocol

import (
	"errors"
	"testing"
)

func TestParseInboundStart(t *testing.T) {
	raw := []byte(`{"event":"start","sequenceNumber":"1","streamSid":"MZ123",
		"start":{"accountSid":"AC1","callSid":"CA1","streamSid":"MZ123",
		"tracks":["inbound"],"mediaFormat":{"encoding":"audio/x-mulaw","sampleRate":8000,"channels":1}}}`)
	msg, err := ParseInbound(raw)
	if err != nil {
		t.Fatalf("ParseInbound() error = %v", err)
	}

	start, ok := msg.(Start)
	if !ok {
		t.Fatalf("message type = %T, want Start", msg)
	}
	if start.Start.CallSID != "CA1" || start.Start.StreamSID != "MZ123" {
		t.Fatalf("unexpected start payload: %+v", start.Start)
	}
	if start.Start.MediaFormat.SampleRate != 8000 {
		t.Fatalf("sample rate = %d, want 8000", start.Start.MediaFormat.SampleRate)
	}
}

func TestParseInboundStartFallsBackToTopLevelStreamSID(t *testing.T) {
	raw := []byte(`{"event":"start","streamSid":"MZ9","start":{"callSid":"CA9"}}`)
	msg, err := ParseInbound(raw)
	if err != nil {
		t.Fatalf("ParseInbound() error = %v", err)
	}
	start := msg.(Start)
	if start.Start.StreamSID != "MZ9" {
		t.Fatalf("StreamSID = %q, want %q", start.Start.StreamSID, "MZ9")
	}
}

func TestParseInboundMedia(t *testing.T) {
	raw := []byte(`{"event":"media","sequenceNumber":"3","streamSid":"MZ123",
		"media":{"track":"inbound","chunk":"2","timestamp":"40","payload":"AQID"}}`)
	msg, err := ParseInbound(raw)
	if err != nil {
		t.Fatalf("ParseInbound() error = %v", err)
	}

	media, ok := msg.(Media)
	if !ok {
		t.Fatalf("message type = %T, want Media", msg)
	}
	if media.Media.Payload != "AQID" || media.StreamSID != "MZ123" {
		t.Fatalf("unexpected media: %+v", media)
	}
}

func TestParseInboundRejectsMediaWithoutPayload(t *testing.T) {
	if _, err := ParseInbound([]byte(`{"event":"media","streamSid":"MZ1","media":{}}`)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseInboundRejectsStartWithoutStreamSID(t *testing.T) {
	if _, err := ParseInbound([]byte(`{"event":"start","start":{"callSid":"CA1"}}`)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseInboundMissingEvent(t *testing.T) {
	_, err := ParseInbound([]byte(`{"foo":"bar"}`))
	if !errors.Is(err, ErrMissingEvent) {
		t.Fatalf("error = %v, want ErrMissingEvent", err)
	}
}

func TestParseInboundUnknownEventPassesThrough(t *testing.T) {
	msg, err := ParseInbound([]byte(`{"event":"warning","detail":"something"}`))
	if err != nil {
		t.Fatalf("ParseInbound() error = %v", err)
	}
	unknown, ok := msg.(Unknown)
	if !ok {
		t.Fatalf("message type = %T, want Unknown", msg)
	}
	if unknown.Event != "warning" {
		t.Fatalf("Event = %q, want %q", unknown.Event, "warning")
	}
}

func TestParseInboundStopAndMarkAndDTMF(t *testing.T) {
	msg, err := ParseInbound([]byte(`{"event":"stop","streamSid":"MZ1"}`))
	if err != nil {
		t.Fatalf("ParseInbound(stop) error = %v", err)
	}
	if _, ok := msg.(Stop); !ok {
		t.Fatalf("message type = %T, want Stop", msg)
	}

	msg, err = ParseInbound([]byte(`{"event":"mark","streamSid":"MZ1","mark":{"name":"keepalive"}}`))
	if err != nil {
		t.Fatalf("ParseInbound(mark) error = %v", err)
	}
	mark, ok := msg.(Mark)
	if !ok || mark.Mark.Name != "keepalive" {
		t.Fatalf("mark = %+v (%T)", msg, msg)
	}

	msg, err = ParseInbound([]byte(`{"event":"dtmf","streamSid":"MZ1","dtmf":{"track":"inbound_track","digit":"5"}}`))
	if err != nil {
		t.Fatalf("ParseInbound(dtmf) error = %v", err)
	}
	dtmf, ok := msg.(DTMF)
	if !ok || dtmf.DTMF.Digit != "5" {
		t.Fatalf("dtmf = %+v (%T)", msg, msg)
	}
}

func TestOutboundMedia(t *testing.T) {
	m := OutboundMedia("MZ1", "////")
	if m.Event != EventMedia || m.StreamSID != "MZ1" || m.Media.Payload != "////" {
		t.Fatalf("unexpected outbound media: %+v", m)
	}
}

func BenchmarkParseInboundMedia(b *testing.B) {
	raw := []byte(`{"event":"media","sequenceNumber":"7","streamSid":"MZ123","media":{"track":"inbound","chunk":"9","timestamp":"180","payload":"AQIDBAUGBwgJCgsMDQ4P"}}`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		msg, err := ParseInbound(raw)
		if err != nil {
			b.Fatalf("ParseInbound() error = %v", err)
		}
		if _, ok := msg.(Media); !ok {
			b.Fatalf("message type = %T, want Media", msg)
		}
	}
}
