package vad

import (
	"math"
	"testing"
)

func sineFrame(n int, amplitude float64) []int16 {
	frame := make([]int16, n)
	for i := range frame {
		frame[i] = int16(amplitude * math.Sin(2*math.Pi*float64(i)/float64(n)))
	}
	return frame
}

func TestSilentFrameIsUnvoiced(t *testing.T) {
	gate := NewGate(500)
	if gate.IsVoiced(make([]int16, 160)) {
		t.Fatalf("all-zero frame classified as voiced")
	}
}

func TestLoudSineFrameIsVoiced(t *testing.T) {
	gate := NewGate(500)
	frame := sineFrame(160, 16000)
	if !gate.IsVoiced(frame) {
		t.Fatalf("full-scale sine frame (RMS %.1f) classified as unvoiced", RMS(frame))
	}
}

func TestQuietFrameBelowThresholdIsUnvoiced(t *testing.T) {
	gate := NewGate(500)
	frame := sineFrame(160, 100)
	if gate.IsVoiced(frame) {
		t.Fatalf("quiet frame (RMS %.1f) classified as voiced", RMS(frame))
	}
}

func TestRMSEmptyFrame(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
}

func TestRMSConstantFrame(t *testing.T) {
	frame := make([]int16, 160)
	for i := range frame {
		frame[i] = 1000
	}
	if got := RMS(frame); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("RMS(constant 1000) = %v, want 1000", got)
	}
}
