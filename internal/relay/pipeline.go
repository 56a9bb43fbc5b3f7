package relay

// utterance accumulates decoded caller audio between flush decisions.
// It is owned by a single connection loop and never shared.
type utterance struct {
	samples     []int16
	frameCount  int
	voicedCount int

	frameSamples int
	maxSamples   int
}

func newUtterance(frameSamples, maxFrames int) *utterance {
	return &utterance{
		frameSamples: frameSamples,
		maxSamples:   frameSamples * maxFrames,
	}
}

// observe records one decoded frame. Voiced frames contribute their samples
// to the buffer; silent frames only advance the frame counter. When the
// buffer exceeds its cap the oldest samples are dropped, keeping the most
// recent speech.
func (u *utterance) observe(samples []int16, voiced bool) {
	u.frameCount++
	if !voiced {
		return
	}
	u.voicedCount++
	u.samples = append(u.samples, samples...)
	if u.maxSamples > 0 && len(u.samples) > u.maxSamples {
		excess := len(u.samples) - u.maxSamples
		u.samples = append(u.samples[:0], u.samples[excess:]...)
	}
}

// take copies out the buffered samples and resets the accumulator.
func (u *utterance) take() []int16 {
	out := make([]int16, len(u.samples))
	copy(out, u.samples)
	u.reset()
	return out
}

// reset discards the buffer and both counters.
func (u *utterance) reset() {
	u.samples = u.samples[:0]
	u.frameCount = 0
	u.voicedCount = 0
}
