package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// EncodeWAV wraps PCM16 mono samples in a minimal WAV container.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWAVTo(&buf, samples, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVTo writes PCM16 mono samples to out as a WAV stream.
func WriteWAVTo(out io.Writer, samples []int16, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = 8000
	}

	dataSize := uint32(len(samples) * 2)
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(numChannels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	for _, s := range samples {
		if err := binary.Write(w, binary.LittleEndian, s); err != nil {
			return err
		}
	}
	return w.Flush()
}

// UnwrapWAV returns the data-chunk payload when b is a WAV container,
// otherwise b unchanged. Speech backends answer with either raw encoded
// audio or a wrapped container; callers do not need to care which.
func UnwrapWAV(b []byte) []byte {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return b
	}

	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(b) {
			break
		}
		if id == "data" {
			return b[off : off+size]
		}
		off += size
		if size%2 == 1 {
			off++ // chunk payloads are word-aligned
		}
	}
	return b
}
