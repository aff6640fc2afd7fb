package bwav

// Int24 holds a signed 24-bit sample right aligned in 32 bits.
type Int24 int32

// Sample is the set of in-memory sample types frame I/O converts to and from.
// Integer types are full scale at their own width, float32 is full scale at
// [-1, 1).
type Sample interface {
	int8 | int16 | Int24 | int32 | float32
}

func sampleToFloat[S Sample](s S) float64 {
	switch v := any(s).(type) {
	case int8:
		return normalizePCMInt(int64(v), 8)
	case int16:
		return normalizePCMInt(int64(v), 16)
	case Int24:
		return normalizePCMInt(int64(v), 24)
	case int32:
		return normalizePCMInt(int64(v), 32)
	case float32:
		return float64(v)
	}

	return 0
}

func sampleFromFloat[S Sample](value float64) S {
	var zero S

	switch any(zero).(type) {
	case int8:
		return S(quantize(value, 8))
	case int16:
		return S(quantize(value, 16))
	case Int24:
		return S(quantize(value, 24))
	case int32:
		return S(quantize(value, 32))
	case float32:
		return S(value)
	}

	return zero
}
