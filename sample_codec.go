package bwav

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

// sampleCodec is one on-disk sample encoding.
type sampleCodec int

const (
	codecUint8 sampleCodec = iota + 1
	codecInt16
	codecInt24
	codecInt32
	codecFloat32
	codecFloat64
)

func (c sampleCodec) String() string {
	switch c {
	case codecUint8:
		return "uint8"
	case codecInt16:
		return "int16"
	case codecInt24:
		return "int24"
	case codecInt32:
		return "int32"
	case codecFloat32:
		return "float32"
	case codecFloat64:
		return "float64"
	default:
		return fmt.Sprintf("sampleCodec(%d)", int(c))
	}
}

// codecFor picks the sample encoding from the valid bits and the framed width
// of each sample, derived from the block alignment.
func codecFor(f Format) (sampleCodec, error) {
	cf := f.CommonFormat()

	if f.ChannelCount == 0 || f.BlockAlignment == 0 || (int(f.BlockAlignment)*8)%int(f.ChannelCount) != 0 {
		return 0, fmt.Errorf("%w: %s with block alignment %d for %d channels",
			ErrUnsupportedSampleFormat, cf, f.BlockAlignment, f.ChannelCount)
	}

	bits := int(f.BitsPerSample)
	framed := int(f.BlockAlignment) * 8 / int(f.ChannelCount)

	switch cf.Kind {
	case KindIntegerPCM, KindAmbisonicBIntegerPCM:
		switch {
		case bits >= 1 && bits <= 8 && framed == 8:
			return codecUint8, nil
		case bits >= 9 && bits <= 16 && framed == 16:
			return codecInt16, nil
		case bits >= 17 && bits <= 24 && framed == 24:
			return codecInt24, nil
		case bits >= 25 && bits <= 32 && framed == 32:
			return codecInt32, nil
		}
	case KindIEEEFloatPCM, KindAmbisonicBFloatPCM:
		switch {
		case bits == 32 && framed == 32:
			return codecFloat32, nil
		case bits == 64 && framed == 64:
			return codecFloat64, nil
		}
	}

	return 0, fmt.Errorf("%w: %s with %d bits in %d-bit frames", ErrUnsupportedSampleFormat, cf, bits, framed)
}

// size returns the number of bytes of one sample.
func (c sampleCodec) size() int {
	switch c {
	case codecUint8:
		return 1
	case codecInt16:
		return 2
	case codecInt24:
		return 3
	case codecInt32, codecFloat32:
		return 4
	case codecFloat64:
		return 8
	default:
		return 0
	}
}

// intBits is the width of the integers exchanged through audio.IntBuffer.
func (c sampleCodec) intBits() int {
	switch c {
	case codecUint8:
		return 8
	case codecInt16:
		return 16
	case codecInt24:
		return 24
	default:
		return 32
	}
}

// decodeInt reads an integer sample. The 8-bit bias is removed.
func (c sampleCodec) decodeInt(b []byte) int64 {
	switch c {
	case codecUint8:
		return int64(b[0]) - pcm8Bias
	case codecInt16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case codecInt24:
		return int64(audio.Int24LETo32(b[:3]))
	case codecInt32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return quantize(c.decode(b), 32)
	}
}

// encodeInt writes a signed integer sample of the width returned by intBits,
// clamping it to the representable range.
func (c sampleCodec) encodeInt(b []byte, v int64) {
	switch c {
	case codecUint8:
		b[0] = byte(clampInt(v, -fullScale8, fullScale8-1) + pcm8Bias)
	case codecInt16:
		binary.LittleEndian.PutUint16(b, uint16(int16(clampInt(v, -fullScale16, fullScale16-1))))
	case codecInt24:
		copy(b[:3], audio.Int32toInt24LEBytes(int32(clampInt(v, minInt24, maxInt24))))
	case codecInt32:
		binary.LittleEndian.PutUint32(b, uint32(int32(clampInt(v, -fullScale32, fullScale32-1))))
	default:
		c.encode(b, normalizePCMInt(v, 32))
	}
}

// decode reads one sample as a full scale value.
func (c sampleCodec) decode(b []byte) float64 {
	switch c {
	case codecFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case codecFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return normalizePCMInt(c.decodeInt(b), c.intBits())
	}
}

// encode writes one full scale value.
func (c sampleCodec) encode(b []byte, v float64) {
	switch c {
	case codecFloat32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case codecFloat64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	default:
		c.encodeInt(b, quantize(v, c.intBits()))
	}
}

func clampInt(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}

// decodeSamples converts raw interleaved bytes into dst.
func decodeSamples[S Sample](c sampleCodec, raw []byte, dst []S) {
	width := c.size()

	for i := range dst {
		dst[i] = sampleFromFloat[S](c.decode(raw[i*width:]))
	}
}

// encodeSamples converts src into raw interleaved bytes.
func encodeSamples[S Sample](c sampleCodec, src []S, raw []byte) {
	width := c.size()

	for i, s := range src {
		c.encode(raw[i*width:], sampleToFloat(s))
	}
}
