// Package vad classifies decoded audio frames as voiced or silent.
package vad

import "math"

// Gate is an energy-based voice activity detector. It compares the
// root-mean-square amplitude of a PCM16 frame against a fixed threshold.
// There is no adaptive noise-floor tracking: a steady background hum above
// the threshold will read as speech. Known limitation.
type Gate struct {
	threshold float64
}

// NewGate returns a gate with the given RMS threshold in raw PCM16 units.
func NewGate(threshold float64) *Gate {
	return &Gate{threshold: threshold}
}

// IsVoiced reports whether the frame's energy clears the threshold.
func (g *Gate) IsVoiced(samples []int16) bool {
	return RMS(samples) >= g.threshold
}

// Threshold returns the configured RMS threshold.
func (g *Gate) Threshold() float64 { return g.threshold }

// RMS computes the root-mean-square amplitude of a PCM16 frame.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var energy float64
	for _, s := range samples {
		energy += float64(s) * float64(s)
	}
	return math.Sqrt(energy / float64(len(samples)))
}
