package bwav

import (
	"bytes"
	"math"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// maxChunkSize is the largest size a 32-bit chunk or form size field holds
// before the 64-bit escape kicks in. Tests lower it to exercise promotion.
var maxChunkSize uint64 = math.MaxUint32

const sizeSentinel uint32 = math.MaxUint32

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

// decodeText decodes a NUL terminated ISO-8859-1 field.
func decodeText(b []byte) string {
	b = b[:clen(b)]

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}

	return string(out)
}

// encodeText encodes s as ISO-8859-1, replacing what doesn't fit.
func encodeText(s string) []byte {
	out, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}

	return out
}

// encodeFixedText encodes s into exactly n bytes, truncating or NUL padding.
func encodeFixedText(s string, n int) []byte {
	raw := make([]byte, n)
	copy(raw, encodeText(s))

	return raw
}

func trimFixedText(b []byte) string {
	return string(bytes.TrimRight([]byte(decodeText(b)), " "))
}

// Duration returns the play time of frames at the passed sample rate.
func Duration(frames uint64, sampleRate uint32) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	secs := frames / uint64(sampleRate)
	rem := frames % uint64(sampleRate)

	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(sampleRate)
}
