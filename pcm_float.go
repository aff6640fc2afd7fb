package bwav

import "math"

const (
	fullScale8  = 1 << 7
	fullScale16 = 1 << 15
	fullScale24 = 1 << 23
	fullScale32 = 1 << 31
	pcm8Bias    = 128
	maxInt24    = fullScale24 - 1
	minInt24    = -fullScale24
)

func clampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// fullScale returns the magnitude of the most negative value of a signed
// integer of the passed width.
func fullScale(bits int) float64 {
	return math.Ldexp(1, bits-1)
}

// normalizePCMInt maps a signed integer sample of the passed width onto
// [-1, 1). The division is exact for widths up to 32 bits.
func normalizePCMInt(sample int64, bits int) float64 {
	return float64(sample) / fullScale(bits)
}

// quantize maps a full scale value back onto a signed integer of the passed
// width, rounding to nearest and clamping to the representable range.
func quantize(value float64, bits int) int64 {
	if math.IsNaN(value) {
		return 0
	}

	scale := fullScale(bits)
	scaled := clampFloat64(math.Round(value*scale), -scale, scale-1)

	return int64(scaled)
}
