package codec

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	samples := []int16{0, 1, -1, 32767}
	wav, err := EncodeWAV(samples, 8000)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	if len(wav) != 44+len(samples)*2 {
		t.Fatalf("container length = %d, want %d", len(wav), 44+len(samples)*2)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE signature: %q %q", wav[0:4], wav[8:12])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 8000 {
		t.Fatalf("sample rate = %d, want 8000", rate)
	}
	if channels := binary.LittleEndian.Uint16(wav[22:24]); channels != 1 {
		t.Fatalf("channels = %d, want 1", channels)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Fatalf("bits per sample = %d, want 16", bits)
	}
}

func TestUnwrapWAVRoundTrip(t *testing.T) {
	samples := []int16{100, -100, 3000, -3000, 0, 32767, -32768}
	wav, err := EncodeWAV(samples, 8000)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}

	raw := UnwrapWAV(wav)
	want := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		want = binary.LittleEndian.AppendUint16(want, uint16(s))
	}
	if !bytes.Equal(raw, want) {
		t.Fatalf("UnwrapWAV payload = %x, want %x", raw, want)
	}
}

func TestUnwrapWAVPassthroughForRawAudio(t *testing.T) {
	raw := []byte{0xFF, 0x7F, 0x00, 0x80, 0x12}
	if got := UnwrapWAV(raw); !bytes.Equal(got, raw) {
		t.Fatalf("UnwrapWAV(raw) = %x, want input unchanged", got)
	}
	if got := UnwrapWAV(nil); got != nil {
		t.Fatalf("UnwrapWAV(nil) = %x, want nil", got)
	}
}

func TestUnwrapWAVSkipsNonDataChunks(t *testing.T) {
	payload := []byte{1, 2, 3, 4}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0)) // size unused by the scanner
	buf.WriteString("WAVE")
	buf.WriteString("LIST")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(3))
	buf.Write([]byte{9, 9, 9, 0}) // 3 payload bytes + alignment pad
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)

	if got := UnwrapWAV(buf.Bytes()); !bytes.Equal(got, payload) {
		t.Fatalf("UnwrapWAV = %x, want %x", got, payload)
	}
}

func TestUnwrapWAVTruncatedContainerReturnsInput(t *testing.T) {
	samples := []int16{1, 2, 3, 4}
	wav, err := EncodeWAV(samples, 8000)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	truncated := wav[:20]
	if got := UnwrapWAV(truncated); !bytes.Equal(got, truncated) {
		t.Fatalf("UnwrapWAV(truncated) should return input unchanged")
	}
}
