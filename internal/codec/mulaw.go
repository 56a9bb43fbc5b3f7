package codec

// G.711 mu-law companding for the 8 kHz telephony leg. Decode is bit-exact
// against the standard expansion table; encode is the usual lossy 8-bit
// companding with bias 132.

const (
	// SilenceByte is the mu-law encoding of zero amplitude, used to pad
	// the final outbound frame.
	SilenceByte byte = 0xFF

	muBias = 0x84
	muClip = 32635
)

// DecodeSample expands one mu-law byte to a linear PCM16 sample.
func DecodeSample(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := int32(b & 0x0F)

	sample := ((mantissa<<3 + muBias) << exponent) - muBias
	if sign != 0 {
		sample = -sample
	}
	return int16(sample)
}

// EncodeSample compands one linear PCM16 sample to a mu-law byte.
func EncodeSample(s int16) byte {
	x := int32(s)
	sign := byte(0)
	if x < 0 {
		x = -x
		sign = 0x80
	}
	if x > muClip {
		x = muClip
	}
	x += muBias

	exponent := byte(7)
	for mask := int32(0x4000); x&mask == 0 && exponent > 0; exponent-- {
		mask >>= 1
	}
	mantissa := byte((x >> (exponent + 3)) & 0x0F)
	return ^(sign | exponent<<4 | mantissa)
}

// EncodeFloatSample compands a normalized sample in [-1, 1].
func EncodeFloatSample(f float64) byte {
	if f > 1 {
		f = 1
	}
	if f < -1 {
		f = -1
	}
	return EncodeSample(int16(f * 32767))
}

// DecodeFrame expands mu-law bytes to PCM16 samples, one sample per byte.
func DecodeFrame(frame []byte) []int16 {
	samples := make([]int16, len(frame))
	for i, b := range frame {
		samples[i] = DecodeSample(b)
	}
	return samples
}

// EncodeFrame compands PCM16 samples to mu-law bytes, one byte per sample.
func EncodeFrame(samples []int16) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = EncodeSample(s)
	}
	return out
}

// EncodePCM16LE compands little-endian PCM16 bytes to mu-law bytes. A
// trailing odd byte is ignored.
func EncodePCM16LE(pcm []byte) []byte {
	n := len(pcm) / 2
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = EncodeSample(s)
	}
	return out
}
